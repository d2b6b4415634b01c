package main

import (
	"fmt"
	"io"
	"path/filepath"
	"strconv"
	"time"

	"github.com/Hapfel1/character-presets-tool/internal/config"
	"github.com/Hapfel1/character-presets-tool/internal/savefile"
	"github.com/Hapfel1/character-presets-tool/pkg/logging"
	"github.com/Hapfel1/character-presets-tool/pkg/preset"
	"github.com/fatih/color"
	"github.com/hashicorp/go-hclog"
	"github.com/spf13/cobra"
)

// app carries what every subcommand needs. Slot numbers are 1-based on the
// command line and converted once, in parseSlot.
type app struct {
	cfg      config.Config
	schema   *preset.Schema
	out      io.Writer
	errOut   io.Writer
	now      func() time.Time
	logLevel string

	logger hclog.Logger
	engine *preset.Engine
}

func newRootCmd(cfg config.Config, out, errOut io.Writer) *cobra.Command {
	a := &app{
		cfg:    cfg,
		schema: preset.LayoutV1,
		out:    out,
		errOut: errOut,
		now:    time.Now,
		logger: hclog.NewNullLogger(),
	}
	a.engine = preset.NewEngine(a.logger)

	var versionFlag bool
	root := &cobra.Command{
		Use:           "presetctl",
		Short:         "Manage Elden Ring character appearance presets",
		Long:          "List, inspect, export, import and copy the 15 character appearance presets stored in Elden Ring save files.\nSlots are numbered 1-15.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup()
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			if versionFlag {
				fmt.Fprintf(a.out, "presetctl %s\n", version)
				fmt.Fprintf(a.out, "Built: %s\n", buildTimestamp())
				return nil
			}
			return cmd.Help()
		},
	}
	root.SetOut(out)
	root.SetErr(errOut)

	root.PersistentFlags().StringVar(&a.logLevel, "log-level", "", "Log level (trace, debug, info, warn, error)")
	root.Flags().BoolVarP(&versionFlag, "version", "V", false, "Show version information")

	root.AddCommand(
		a.listCmd(),
		a.infoCmd(),
		a.exportCmd(),
		a.importCmd(),
		a.copyCmd(),
		a.clearCmd(),
		a.verifyCmd(),
		a.savesCmd(),
	)
	return root
}

// setup builds the logger once flags are parsed. The flag beats the
// environment.
func (a *app) setup() error {
	level := a.cfg.LogLevel
	if a.logLevel != "" {
		if hclog.LevelFromString(a.logLevel) == hclog.NoLevel {
			return fmt.Errorf("invalid log level %q", a.logLevel)
		}
		level = a.logLevel
	}

	a.logger = logging.NewLogger("presetctl", level, a.cfg.JSONLog, a.errOut)
	a.engine = preset.NewEngine(a.logger.Named("transplant"))

	if a.cfg.ColorDisabled() {
		color.NoColor = true
	}

	a.logger.Debug("🔧 Configuration",
		"table_entry", a.cfg.TableEntry,
		"table_offset", a.cfg.TableOffset,
		"backup_suffix", a.cfg.BackupSuffix,
	)
	return nil
}

// parseSlot converts a 1-based slot argument to an index. what names the
// argument in error messages; rangeErr is the sentinel for out-of-range
// numbers.
func parseSlot(arg, what string, rangeErr error) (int, error) {
	n, err := strconv.Atoi(arg)
	if err != nil {
		return 0, fmt.Errorf("%s must be an integer (1-%d), got %q", what, preset.SlotCount, arg)
	}
	if n < 1 || n > preset.SlotCount {
		return 0, fmt.Errorf("%w: %s must be 1-%d, got %d", rangeErr, what, preset.SlotCount, n)
	}
	return n - 1, nil
}

// parseEntry converts a 1-based document entry argument to an index.
func parseEntry(arg string, count int) (int, error) {
	n, err := strconv.Atoi(arg)
	if err != nil {
		return 0, fmt.Errorf("entry must be an integer, got %q", arg)
	}
	if count == 0 {
		return 0, fmt.Errorf("%w: document has no presets", preset.ErrEntryRange)
	}
	if n < 1 || n > count {
		return 0, fmt.Errorf("%w: entry must be 1-%d, got %d", preset.ErrEntryRange, count, n)
	}
	return n - 1, nil
}

func (a *app) layout() savefile.Layout {
	return a.cfg.TableLayout(a.schema.Size())
}

// save is an opened save file and its decoded preset table.
type save struct {
	path      string
	container *savefile.Container
	table     *preset.Table
}

func (a *app) openSave(path string) (*save, error) {
	c, err := savefile.Open(path, a.layout(), a.logger.Named("savefile"))
	if err != nil {
		return nil, err
	}

	table, err := preset.LoadTable(a.schema, c)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	a.logger.Debug("📂 Loaded preset table", "path", path, "active", len(table.ActiveSlots()))
	return &save{path: path, container: c, table: table}, nil
}

// commit writes the table back, backs up the file on disk and persists the
// new contents. It runs only after a mutation succeeded.
func (a *app) commit(s *save) error {
	if err := s.table.Store(s.container); err != nil {
		return err
	}

	backup, err := savefile.CreateBackup(s.path, a.cfg.BackupSuffix)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Creating backup: %s\n", backup)

	if err := s.container.Persist(s.path); err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Save updated: %s\n", s.path)
	return nil
}

// samePath reports whether two arguments name the same file.
func samePath(a, b string) bool {
	if a == b {
		return true
	}
	absA, errA := filepath.Abs(a)
	absB, errB := filepath.Abs(b)
	return errA == nil && errB == nil && absA == absB
}
