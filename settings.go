package decu

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/pelletier/go-toml/v2"
)

// SettingsFile is the name of the settings file looked up in the home and project directories.
const SettingsFile = "decu.toml"

//go:embed decu.toml
var defaultSettings []byte

type Settings struct {
	Script     ScriptSettings     `toml:"script"`
	Logging    LoggingSettings    `toml:"logging"`
	Experiment ExperimentSettings `toml:"experiment"`
	Figure     FigureSettings     `toml:"figure"`
	Result     ResultSettings     `toml:"result"`
}

type ScriptSettings struct {
	DataDir    string `toml:"data_dir"`
	ResultsDir string `toml:"results_dir"`
	FiguresDir string `toml:"figures_dir"`
	ScriptsDir string `toml:"scripts_dir"`
	GendataDir string `toml:"gendata_dir"`
	FigureFmt  string `toml:"figure_fmt"`
	// TimeFmt is the layout of ${time} in file names.
	TimeFmt          string `toml:"time_fmt"`
	ResultFile       string `toml:"result_file"`
	FigureFile       string `toml:"figure_wo_suffix_file"`
	FigureSuffixFile string `toml:"figure_w_suffix_file"`
}

type LoggingSettings struct {
	LogsDir string `toml:"logs_dir"`
	LogFile string `toml:"log_file"`
	// TimeFmt is the layout of timestamps inside log lines.
	TimeFmt string `toml:"time_fmt"`
	// Console mirrors the log file on stderr.
	Console bool `toml:"console"`
}

type ExperimentSettings struct {
	StartMsg    string `toml:"start_msg"`
	EndMsg      string `toml:"end_msg"`
	WriteMsg    string `toml:"write_msg"`
	NoResultMsg string `toml:"no_result_msg"`
}

type FigureSettings struct {
	WriteMsg string `toml:"write_msg"`
}

type ResultSettings struct {
	// Disable lists result capabilities that must not be registered.
	Disable []string `toml:"disable"`
}

// DefaultSettings returns the built-in settings.
func DefaultSettings() *Settings {
	s := &Settings{}
	if err := toml.Unmarshal(defaultSettings, s); err != nil {
		panic(fmt.Sprintf("decode default settings: %v", err))
	}
	return s
}

// LoadSettings returns the built-in settings overridden by ~/.decu.toml and then by
// <projectDir>/decu.toml. Each file only overrides the keys it sets; missing files are skipped.
func LoadSettings(projectDir string) (*Settings, error) {
	s := DefaultSettings()

	files := make([]string, 0, 2)
	if home, err := os.UserHomeDir(); err == nil {
		files = append(files, filepath.Join(home, "."+SettingsFile))
	}
	files = append(files, filepath.Join(projectDir, SettingsFile))

	for _, file := range files {
		if err := s.merge(file); err != nil {
			return nil, err
		}
	}

	return s, nil
}

func (s *Settings) merge(file string) error {
	data, err := os.ReadFile(file)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	} else if err != nil {
		return fmt.Errorf("read %s: %w", file, err)
	}

	if err := toml.Unmarshal(data, s); err != nil {
		return fmt.Errorf("decode %s: %w", file, err)
	}

	return nil
}

// Dirs returns every directory a project uses, relative to the project directory.
func (s *Settings) Dirs() []string {
	return []string{
		s.Script.DataDir,
		s.Script.ResultsDir,
		s.Script.FiguresDir,
		s.Script.ScriptsDir,
		s.Script.GendataDir,
		s.Logging.LogsDir,
	}
}

// InitProject creates every directory of [Settings.Dirs] under projectDir.
func InitProject(projectDir string, s *Settings) error {
	for _, dir := range s.Dirs() {
		if err := os.MkdirAll(filepath.Join(projectDir, dir), 0o755); err != nil {
			return err
		}
	}
	return nil
}
