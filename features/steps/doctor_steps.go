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

	"media-trimmer/cmd"
	"media-trimmer/infrastructure/config"
	"media-trimmer/infrastructure/ffmpeg"

	"github.com/cucumber/godog"
)

type doctorContext struct {
	tempDir       string
	cfg           *config.Config
	runner        *recordingRunner
	ffprobeExists bool
	output        *bytes.Buffer
	err           error
}

var SharedDoctorContext = &doctorContext{}

func InitializeDoctorScenario(ctx *godog.ScenarioContext) {
	testCtx := SharedDoctorContext

	ctx.Before(func(c context.Context, sc *godog.Scenario) (context.Context, error) {
		tempDir, err := os.MkdirTemp("", "doctor-test-*")
		if err != nil {
			return c, err
		}
		testCtx.tempDir = tempDir
		testCtx.cfg = config.Default()
		testCtx.cfg.Engine.WorkspaceRoot = filepath.Join(tempDir, "work")
		testCtx.cfg.Output.Directory = tempDir
		testCtx.runner = &recordingRunner{}
		testCtx.ffprobeExists = true
		testCtx.output = &bytes.Buffer{}
		testCtx.err = nil
		return c, nil
	})

	ctx.After(func(c context.Context, sc *godog.Scenario, err error) (context.Context, error) {
		if testCtx.tempDir != "" {
			os.RemoveAll(testCtx.tempDir)
		}
		SharedDoctorContext = &doctorContext{}
		return c, nil
	})

	ctx.Step(`^ffmpeg is not installed$`, testCtx.ffmpegIsNotInstalled)
	ctx.Step(`^ffprobe is not installed$`, testCtx.ffprobeIsNotInstalled)
	ctx.Step(`^the output directory is a regular file$`, testCtx.theOutputDirectoryIsARegularFile)
	ctx.Step(`^I run the doctor command$`, testCtx.iRunTheDoctorCommand)
	ctx.Step(`^the doctor should pass$`, testCtx.theDoctorShouldPass)
	ctx.Step(`^the doctor should fail$`, testCtx.theDoctorShouldFail)
	ctx.Step(`^the doctor output should contain "([^"]*)"$`, testCtx.theDoctorOutputShouldContain)
}

func (d *doctorContext) ffmpegIsNotInstalled() error {
	d.runner.failVersion = true
	return nil
}

func (d *doctorContext) ffprobeIsNotInstalled() error {
	d.ffprobeExists = false
	return nil
}

func (d *doctorContext) theOutputDirectoryIsARegularFile() error {
	path := filepath.Join(d.tempDir, "clips")
	d.cfg.Output.Directory = path
	return os.WriteFile(path, []byte("not a directory"), 0644)
}

func (d *doctorContext) locateProbe(ctx context.Context) (string, error) {
	if !d.ffprobeExists {
		return "", fmt.Errorf("ffprobe not found: which ffprobe: exit status 1")
	}
	return "/usr/bin/ffprobe", nil
}

func (d *doctorContext) iRunTheDoctorCommand() error {
	eng := ffmpeg.NewEngine(
		ffmpeg.WithCommandRunner(d.runner),
		ffmpeg.WithWorkspaceRoot(d.cfg.Engine.WorkspaceRoot),
	)
	defer eng.Close()

	d.err = cmd.RunDoctorWithDependencies(context.Background(), eng, d.cfg, d.locateProbe, d.output)
	return nil
}

func (d *doctorContext) theDoctorShouldPass() error {
	if d.err != nil {
		return fmt.Errorf("expected doctor to pass, got %v\n%s", d.err, d.output.String())
	}
	return nil
}

func (d *doctorContext) theDoctorShouldFail() error {
	if !errors.Is(d.err, cmd.ErrDoctorFailed) {
		return fmt.Errorf("expected ErrDoctorFailed, got %v", d.err)
	}
	return nil
}

func (d *doctorContext) theDoctorOutputShouldContain(text string) error {
	if !strings.Contains(d.output.String(), text) {
		return fmt.Errorf("expected output to contain %q, got:\n%s", text, d.output.String())
	}
	return nil
}
