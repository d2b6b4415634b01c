package main

import (
	"errors"
	"fmt"
	"path/filepath"

	"github.com/Hapfel1/character-presets-tool/internal/savedir"
	"github.com/Hapfel1/character-presets-tool/internal/savefile"
	"github.com/Hapfel1/character-presets-tool/pkg/interchange"
	"github.com/Hapfel1/character-presets-tool/pkg/preset"
	"github.com/spf13/cobra"
)

func (a *app) listCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "list <save_file>",
		Short:   "List all character presets in a save file",
		Example: "  presetctl list ER0000.sl2",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := a.openSave(args[0])
			if err != nil {
				return err
			}

			active := s.table.ActiveSlots()
			fmt.Fprintf(a.out, "Character Presets (%d/%d slots used):\n", len(active), preset.SlotCount)
			if len(active) == 0 {
				fmt.Fprintln(a.out, "No presets found in this save file")
				return nil
			}

			fmt.Fprintln(a.out, renderSlotTable(active))
			return nil
		},
	}
}

func (a *app) infoCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "info <save_file> <slot>",
		Short:   "Show detailed information for a specific preset slot",
		Example: "  presetctl info ER0000.sl2 1",
		Args:    cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			index, err := parseSlot(args[1], "slot", preset.ErrSlotRange)
			if err != nil {
				return err
			}

			s, err := a.openSave(args[0])
			if err != nil {
				return err
			}

			rec, err := s.table.Slot(index)
			if err != nil {
				return err
			}
			if rec.IsEmpty() {
				fmt.Fprintf(a.out, "Slot %d is empty\n", index+1)
				return nil
			}

			return writeRecordInfo(a.out, index+1, rec)
		},
	}
}

func (a *app) exportCmd() *cobra.Command {
	var compression string

	cmd := &cobra.Command{
		Use:   "export <save_file> <output_file>",
		Short: "Export all active presets to a JSON document",
		Long: "Export all active presets to a JSON document.\n" +
			"The document is compressed when --compress is given or the output ends in .gz or .bz2.",
		Example: "  presetctl export ER0000.sl2 my_presets.json\n  presetctl export ER0000.sl2 my_presets.json.gz",
		Args:    cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := a.openSave(args[0])
			if err != nil {
				return err
			}

			doc := a.engine.Export(s.table)
			if doc.Len() == 0 {
				fmt.Fprintln(a.out, "No active presets found to export")
				return nil
			}

			doc.Stamp(filepath.Base(args[0]), a.now())
			if err := interchange.WriteFileMode(args[1], doc, compression, a.cfg.DocumentMode(), a.logger.Named("interchange")); err != nil {
				return err
			}

			fmt.Fprintf(a.out, "Successfully exported %d preset(s) to: %s\n", doc.Len(), args[1])
			return nil
		},
	}

	cmd.Flags().StringVarP(&compression, "compress", "c", "", "Compression: raw, gzip or bzip2 (default: from file extension)")
	return cmd
}

func (a *app) importCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "import <preset_file> <entry> <save_file> <slot>",
		Short:   "Import one preset from an exported document into a save slot",
		Long:    "Import one preset from an exported document into a save slot.\nEntries are numbered from 1 in document order; the destination slot may be occupied.",
		Example: "  presetctl import my_presets.json 1 ER0001.sl2 4",
		Args:    cobra.ExactArgs(4),
		RunE: func(cmd *cobra.Command, args []string) error {
			dstIndex, err := parseSlot(args[3], "destination slot", preset.ErrDestRange)
			if err != nil {
				return err
			}

			doc, err := interchange.ReadFile(args[0], a.logger.Named("interchange"))
			if err != nil {
				return err
			}
			entryIndex, err := parseEntry(args[1], doc.Len())
			if err != nil {
				return err
			}

			s, err := a.openSave(args[2])
			if err != nil {
				return err
			}

			if err := a.engine.Import(doc, entryIndex, s.table, dstIndex); err != nil {
				return err
			}
			fmt.Fprintf(a.out, "Imported entry %d (originally slot %d) into slot %d\n",
				entryIndex+1, doc.Presets[entryIndex].OriginalSlot+1, dstIndex+1)

			return a.commit(s)
		},
	}
}

func (a *app) copyCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "copy <source_save> <source_slot> <dest_save> <dest_slot>",
		Short:   "Copy a preset from one save file to another",
		Example: "  presetctl copy ER0000.sl2 1 ER0001.sl2 2",
		Args:    cobra.ExactArgs(4),
		RunE: func(cmd *cobra.Command, args []string) error {
			srcIndex, err := parseSlot(args[1], "source slot", preset.ErrSlotRange)
			if err != nil {
				return err
			}
			dstIndex, err := parseSlot(args[3], "destination slot", preset.ErrSlotRange)
			if err != nil {
				return err
			}

			src, err := a.openSave(args[0])
			if err != nil {
				return err
			}
			dst := src
			if !samePath(args[0], args[2]) {
				if dst, err = a.openSave(args[2]); err != nil {
					return err
				}
			}

			if err := a.engine.Copy(src.table, srcIndex, dst.table, dstIndex); err != nil {
				if errors.Is(err, preset.ErrEmptySource) {
					return fmt.Errorf("source slot %d is empty: %w", srcIndex+1, err)
				}
				return err
			}
			fmt.Fprintf(a.out, "Copied preset from slot %d to slot %d\n", srcIndex+1, dstIndex+1)

			return a.commit(dst)
		},
	}
}

func (a *app) clearCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "clear <save_file> <slot>",
		Short:   "Empty a preset slot",
		Example: "  presetctl clear ER0000.sl2 3",
		Args:    cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			index, err := parseSlot(args[1], "slot", preset.ErrSlotRange)
			if err != nil {
				return err
			}

			s, err := a.openSave(args[0])
			if err != nil {
				return err
			}

			if err := a.engine.Clear(s.table, index); err != nil {
				return err
			}
			fmt.Fprintf(a.out, "Cleared slot %d\n", index+1)

			return a.commit(s)
		},
	}
}

func (a *app) verifyCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "verify <save_file>",
		Short: "Check the checksum of every entry in a save file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := savefile.Open(args[0], a.layout(), a.logger.Named("savefile"))
			if err != nil {
				return err
			}

			checks, verifyErr := c.Verify()
			for _, check := range checks {
				name := check.Entry.Name
				if name == "" {
					name = fmt.Sprintf("entry %d", check.Entry.Index)
				}
				if check.OK() {
					fmt.Fprintf(a.out, "✅ %s\n", name)
				} else {
					fmt.Fprintf(a.out, "❌ %s\n", name)
				}
			}
			if verifyErr != nil {
				return verifyErr
			}

			fmt.Fprintf(a.out, "All %d entries verified\n", len(checks))
			return nil
		},
	}
}

func (a *app) savesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "saves [root]",
		Short: "List save files below the save root",
		Long:  "List save files below the save root. The root defaults to PRESETCTL_SAVE_DIR or the platform save folder.",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			override := a.cfg.SaveDir
			if len(args) == 1 {
				override = args[0]
			}
			root := savedir.Root(override)

			found, err := savedir.Discover(root)
			if err != nil {
				return err
			}
			if len(found) == 0 {
				fmt.Fprintf(a.out, "No save files found in %s\n", root)
				return nil
			}

			for _, path := range found {
				fmt.Fprintln(a.out, path)
			}
			return nil
		},
	}
}
