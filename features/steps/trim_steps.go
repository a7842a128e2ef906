//go:build integration

package steps

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	apptrim "media-trimmer/application/trim"
	"media-trimmer/cmd"
	"media-trimmer/infrastructure/ffmpeg"
	"media-trimmer/infrastructure/filesystem"

	"github.com/cucumber/godog"
)

// mp4Header makes sniffed test sources look like ISO base media
var mp4Header = []byte{
	0x00, 0x00, 0x00, 0x20, 'f', 't', 'y', 'p', 'i', 's', 'o', 'm',
	0x00, 0x00, 0x02, 0x00, 'i', 's', 'o', 'm', 'i', 's', 'o', '2',
	'a', 'v', 'c', '1', 'm', 'p', '4', '1',
}

// recordingRunner stands in for the ffmpeg binary. Run copies the first half
// of input.mp4 to output.mp4 inside the workspace it is given.
type recordingRunner struct {
	mu          sync.Mutex
	runs        [][]string
	versions    int
	failVersion bool
	failRun     bool
}

func (r *recordingRunner) Run(ctx context.Context, dir, name string, args ...string) error {
	r.mu.Lock()
	r.runs = append(r.runs, append([]string(nil), args...))
	fail := r.failRun
	r.mu.Unlock()

	if fail {
		return errors.New("exit status 1: input.mp4: Invalid data found when processing input")
	}
	data, err := os.ReadFile(filepath.Join(dir, "input.mp4"))
	if err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(dir, "output.mp4"), data[:len(data)/2], 0o600)
}

func (r *recordingRunner) Output(ctx context.Context, name string, args ...string) ([]byte, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.versions++
	if r.failVersion {
		return nil, errors.New(`exec: "ffmpeg": executable file not found in $PATH`)
	}
	return []byte("ffmpeg version 6.1"), nil
}

// trimContext holds test state for trim scenarios
type trimContext struct {
	tempDir    string
	sourcePath string
	outputDir  string
	runner     *recordingRunner
	engine     *ffmpeg.Engine
	session    *apptrim.Session
	output     *bytes.Buffer
	err        error
}

// SharedTrimContext is reset before each scenario via Before hook
var SharedTrimContext *trimContext

func getTrimContext() *trimContext {
	return SharedTrimContext
}

func InitializeTrimScenario(ctx *godog.ScenarioContext) {
	ctx.Before(func(c context.Context, sc *godog.Scenario) (context.Context, error) {
		tempDir, err := os.MkdirTemp("", "trim-test-*")
		if err != nil {
			return c, err
		}
		runner := &recordingRunner{}
		eng := ffmpeg.NewEngine(
			ffmpeg.WithCommandRunner(runner),
			ffmpeg.WithWorkspaceRoot(filepath.Join(tempDir, "work")),
		)
		outputDir := filepath.Join(tempDir, "out")
		service := apptrim.NewService(eng, filesystem.NewSaver(outputDir),
			apptrim.WithProgress(apptrim.ProgressConfig{Interval: time.Millisecond, MaxStep: 10}),
		)

		SharedTrimContext = &trimContext{
			tempDir:   tempDir,
			outputDir: outputDir,
			runner:    runner,
			engine:    eng,
			session:   apptrim.NewSession(eng, service, "", ""),
			output:    &bytes.Buffer{},
		}
		return c, nil
	})

	ctx.After(func(c context.Context, sc *godog.Scenario, err error) (context.Context, error) {
		if t := SharedTrimContext; t != nil {
			t.engine.Close()
			os.RemoveAll(t.tempDir)
		}
		SharedTrimContext = nil
		return c, nil
	})

	ctx.Step(`^a source video "([^"]*)" of (\d+) bytes$`, aSourceVideoOfBytes)
	ctx.Step(`^a text file "([^"]*)"$`, aTextFile)
	ctx.Step(`^no source video exists at "([^"]*)"$`, noSourceVideoExistsAt)
	ctx.Step(`^the engine binary is missing$`, theEngineBinaryIsMissing)
	ctx.Step(`^the engine fails to process the clip$`, theEngineFailsToProcessTheClip)
	ctx.Step(`^I trim the video from "([^"]*)" to "([^"]*)"$`, iTrimTheVideoFromTo)
	ctx.Step(`^I trim the video with the default range$`, iTrimTheVideoWithTheDefaultRange)
	ctx.Step(`^I attempt to trim from "([^"]*)" to "([^"]*)"$`, iAttemptToTrimFromTo)
	ctx.Step(`^the engine should have been called with arguments:$`, theEngineShouldHaveBeenCalledWithArguments)
	ctx.Step(`^the engine should not have been called$`, theEngineShouldNotHaveBeenCalled)
	ctx.Step(`^the engine should have been loaded (\d+) times?$`, theEngineShouldHaveBeenLoadedTimes)
	ctx.Step(`^the output file "([^"]*)" should exist$`, theOutputFileShouldExist)
	ctx.Step(`^the output file "([^"]*)" should not exist$`, theOutputFileShouldNotExist)
	ctx.Step(`^the engine workspace should be empty$`, theEngineWorkspaceShouldBeEmpty)
	ctx.Step(`^the trim output should mention "([^"]*)"$`, theTrimOutputShouldMention)
	ctx.Step(`^I should receive an error about invalid timestamp format$`, iShouldReceiveAnErrorAboutInvalidTimestampFormat)
	ctx.Step(`^I should receive an error about end time before start time$`, iShouldReceiveAnErrorAboutEndTimeBeforeStartTime)
	ctx.Step(`^I should receive an error about missing source file$`, iShouldReceiveAnErrorAboutMissingSourceFile)
	ctx.Step(`^I should receive an error about the engine being unavailable$`, iShouldReceiveAnErrorAboutTheEngineBeingUnavailable)
	ctx.Step(`^I should receive a trim error containing "([^"]*)"$`, iShouldReceiveATrimErrorContaining)
}

func aSourceVideoOfBytes(name string, size int) error {
	t := getTrimContext()
	data := make([]byte, size)
	copy(data, mp4Header)
	t.sourcePath = filepath.Join(t.tempDir, name)
	return os.WriteFile(t.sourcePath, data, 0o644)
}

func aTextFile(name string) error {
	t := getTrimContext()
	t.sourcePath = filepath.Join(t.tempDir, name)
	return os.WriteFile(t.sourcePath, []byte("meeting notes, not a video\n"), 0o644)
}

func noSourceVideoExistsAt(path string) error {
	t := getTrimContext()
	t.sourcePath = filepath.Join(t.tempDir, path)
	return nil
}

func theEngineBinaryIsMissing() error {
	getTrimContext().runner.failVersion = true
	return nil
}

func theEngineFailsToProcessTheClip() error {
	getTrimContext().runner.failRun = true
	return nil
}

func runTrim(start, end string) error {
	t := getTrimContext()
	return cmd.RunTrimWithDependencies(
		context.Background(),
		t.session,
		filesystem.NewMediaLoader(filesystem.NewChecker()),
		t.sourcePath,
		start,
		end,
		t.output,
	)
}

func iTrimTheVideoFromTo(start, end string) error {
	t := getTrimContext()
	t.err = runTrim(start, end)
	if t.err != nil {
		return fmt.Errorf("unexpected error: %v", t.err)
	}
	return nil
}

func iTrimTheVideoWithTheDefaultRange() error {
	return iTrimTheVideoFromTo("", "")
}

func iAttemptToTrimFromTo(start, end string) error {
	t := getTrimContext()
	t.err = runTrim(start, end)
	return nil
}

func theEngineShouldHaveBeenCalledWithArguments(table *godog.Table) error {
	t := getTrimContext()
	t.runner.mu.Lock()
	defer t.runner.mu.Unlock()
	if len(t.runner.runs) == 0 {
		return fmt.Errorf("engine was not called")
	}

	var want []string
	for i, row := range table.Rows {
		if i == 0 {
			continue // Skip header row
		}
		want = append(want, row.Cells[0].Value)
	}

	got := t.runner.runs[len(t.runner.runs)-1]
	if strings.Join(got, " ") != strings.Join(want, " ") {
		return fmt.Errorf("expected engine arguments %v, got %v", want, got)
	}
	return nil
}

func theEngineShouldNotHaveBeenCalled() error {
	t := getTrimContext()
	t.runner.mu.Lock()
	defer t.runner.mu.Unlock()
	if len(t.runner.runs) != 0 {
		return fmt.Errorf("expected no engine calls, got %v", t.runner.runs)
	}
	return nil
}

func theEngineShouldHaveBeenLoadedTimes(n int) error {
	t := getTrimContext()
	t.runner.mu.Lock()
	defer t.runner.mu.Unlock()
	if t.runner.versions != n {
		return fmt.Errorf("expected engine to be loaded %d time(s), got %d", n, t.runner.versions)
	}
	return nil
}

func theOutputFileShouldExist(name string) error {
	t := getTrimContext()
	path := filepath.Join(t.outputDir, name)
	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("expected output file %s: %w", path, err)
	}
	if info.Size() == 0 {
		return fmt.Errorf("output file %s is empty", path)
	}
	return nil
}

func theOutputFileShouldNotExist(name string) error {
	t := getTrimContext()
	path := filepath.Join(t.outputDir, name)
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("did not expect output file %s", path)
	}
	return nil
}

func theEngineWorkspaceShouldBeEmpty() error {
	t := getTrimContext()
	ws := t.engine.Workspace()
	if ws == "" {
		return fmt.Errorf("engine has no workspace")
	}
	entries, err := os.ReadDir(ws)
	if err != nil {
		return err
	}
	if len(entries) != 0 {
		var names []string
		for _, e := range entries {
			names = append(names, e.Name())
		}
		return fmt.Errorf("expected empty workspace, found %v", names)
	}
	return nil
}

func theTrimOutputShouldMention(text string) error {
	t := getTrimContext()
	if !strings.Contains(t.output.String(), text) {
		return fmt.Errorf("expected output to contain %q, got:\n%s", text, t.output.String())
	}
	return nil
}

func iShouldReceiveAnErrorAboutInvalidTimestampFormat() error {
	return iShouldReceiveATrimErrorContaining("invalid timestamp format")
}

func iShouldReceiveAnErrorAboutEndTimeBeforeStartTime() error {
	return iShouldReceiveATrimErrorContaining("must be after start time")
}

func iShouldReceiveAnErrorAboutMissingSourceFile() error {
	return iShouldReceiveATrimErrorContaining("does not exist")
}

func iShouldReceiveAnErrorAboutTheEngineBeingUnavailable() error {
	return iShouldReceiveATrimErrorContaining("media engine unavailable")
}

func iShouldReceiveATrimErrorContaining(text string) error {
	t := getTrimContext()
	if t.err == nil {
		return fmt.Errorf("expected an error but got none")
	}
	if !strings.Contains(t.err.Error(), text) {
		return fmt.Errorf("expected error containing %q, got: %v", text, t.err)
	}
	return nil
}
