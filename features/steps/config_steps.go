//go:build integration

package steps

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"media-trimmer/cmd"
	"media-trimmer/infrastructure/config"

	"github.com/cucumber/godog"
)

type configContext struct {
	tempDir    string
	configPath string
	cfg        *config.Config
	found      bool
	loadErr    error
	output     *bytes.Buffer
}

// SharedConfigContext is reset before each scenario via After hook
var SharedConfigContext = &configContext{}

func InitializeConfigScenario(ctx *godog.ScenarioContext) {
	testCtx := SharedConfigContext

	ctx.Before(func(c context.Context, sc *godog.Scenario) (context.Context, error) {
		tempDir, err := os.MkdirTemp("", "config-test-*")
		if err != nil {
			return c, err
		}
		testCtx.tempDir = tempDir
		testCtx.cfg = nil
		testCtx.found = false
		testCtx.loadErr = nil
		testCtx.output = &bytes.Buffer{}
		return c, nil
	})

	// Reset context after each scenario
	ctx.After(func(c context.Context, sc *godog.Scenario, err error) (context.Context, error) {
		if testCtx.tempDir != "" {
			os.RemoveAll(testCtx.tempDir)
		}
		SharedConfigContext = &configContext{}
		return c, nil
	})

	ctx.Step(`^a configuration file exists at "([^"]*)"$`, testCtx.aConfigurationFileExistsAt)
	ctx.Step(`^no configuration file exists at "([^"]*)"$`, testCtx.noConfigurationFileExistsAt)
	ctx.Step(`^a configuration file containing:$`, testCtx.aConfigurationFileContaining)
	ctx.Step(`^I load the configuration$`, testCtx.iLoadTheConfiguration)
	ctx.Step(`^I attempt to load the configuration$`, testCtx.iAttemptToLoadTheConfiguration)
	ctx.Step(`^I show the configuration$`, testCtx.iShowTheConfiguration)
	ctx.Step(`^the output directory should be "([^"]*)"$`, testCtx.theOutputDirectoryShouldBe)
	ctx.Step(`^the ffmpeg path should be "([^"]*)"$`, testCtx.theFFmpegPathShouldBe)
	ctx.Step(`^the default range should be "([^"]*)" to "([^"]*)"$`, testCtx.theDefaultRangeShouldBe)
	ctx.Step(`^the configuration should come from defaults$`, testCtx.theConfigurationShouldComeFromDefaults)
	ctx.Step(`^I should receive a configuration error containing "([^"]*)"$`, testCtx.iShouldReceiveAConfigurationErrorContaining)
	ctx.Step(`^the config output should contain "([^"]*)"$`, testCtx.theConfigOutputShouldContain)
}

func findProjectRoot() (string, error) {
	dir, err := os.Getwd()
	if err != nil {
		return "", err
	}

	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir, nil
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return "", fmt.Errorf("could not find project root (no go.mod found)")
		}
		dir = parent
	}
}

func (c *configContext) aConfigurationFileExistsAt(path string) error {
	root, err := findProjectRoot()
	if err != nil {
		return err
	}
	c.configPath = filepath.Join(root, path)

	// Verify file actually exists
	if _, err := os.Stat(c.configPath); err != nil {
		return fmt.Errorf("expected config file at %s but it does not exist: %w", c.configPath, err)
	}
	return nil
}

func (c *configContext) noConfigurationFileExistsAt(path string) error {
	c.configPath = filepath.Join(c.tempDir, path)
	return nil
}

func (c *configContext) aConfigurationFileContaining(doc *godog.DocString) error {
	c.configPath = filepath.Join(c.tempDir, "config.yaml")
	return os.WriteFile(c.configPath, []byte(doc.Content), 0644)
}

func (c *configContext) iLoadTheConfiguration() error {
	cfg, found, err := config.LoadOrDefault(c.configPath)
	if err != nil {
		return fmt.Errorf("unexpected error loading config: %w", err)
	}
	c.cfg, c.found = cfg, found
	return nil
}

func (c *configContext) iAttemptToLoadTheConfiguration() error {
	c.cfg, c.found, c.loadErr = config.LoadOrDefault(c.configPath)
	return nil
}

func (c *configContext) iShowTheConfiguration() error {
	if err := c.iLoadTheConfiguration(); err != nil {
		return err
	}
	return cmd.RunConfigShowWithDependencies(c.cfg, c.configPath, c.found, c.output)
}

func (c *configContext) theOutputDirectoryShouldBe(expected string) error {
	if c.cfg == nil {
		return fmt.Errorf("config was not loaded")
	}
	if c.cfg.Output.Directory != expected {
		return fmt.Errorf("expected output directory %q, got %q", expected, c.cfg.Output.Directory)
	}
	return nil
}

func (c *configContext) theFFmpegPathShouldBe(expected string) error {
	if c.cfg == nil {
		return fmt.Errorf("config was not loaded")
	}
	if c.cfg.Engine.FFmpegPath != expected {
		return fmt.Errorf("expected ffmpeg path %q, got %q", expected, c.cfg.Engine.FFmpegPath)
	}
	return nil
}

func (c *configContext) theDefaultRangeShouldBe(start, end string) error {
	if c.cfg == nil {
		return fmt.Errorf("config was not loaded")
	}
	if c.cfg.Trim.DefaultStart != start || c.cfg.Trim.DefaultEnd != end {
		return fmt.Errorf("expected default range %s-%s, got %s-%s", start, end, c.cfg.Trim.DefaultStart, c.cfg.Trim.DefaultEnd)
	}
	return nil
}

func (c *configContext) theConfigurationShouldComeFromDefaults() error {
	if c.found {
		return fmt.Errorf("expected no config file to be found")
	}
	return nil
}

func (c *configContext) iShouldReceiveAConfigurationErrorContaining(text string) error {
	if c.loadErr == nil {
		return fmt.Errorf("expected an error but got none")
	}
	if !strings.Contains(c.loadErr.Error(), text) {
		return fmt.Errorf("expected error containing %q, got: %v", text, c.loadErr)
	}
	return nil
}

func (c *configContext) theConfigOutputShouldContain(text string) error {
	if !strings.Contains(c.output.String(), text) {
		return fmt.Errorf("expected output to contain %q, got:\n%s", text, c.output.String())
	}
	return nil
}
