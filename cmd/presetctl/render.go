package main

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/Hapfel1/character-presets-tool/pkg/preset"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/fatih/color"
)

var (
	headerStyle = lipgloss.NewStyle().Bold(true).Padding(0, 1)
	cellStyle   = lipgloss.NewStyle().Padding(0, 1)
	borderStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))

	sectionColor = color.New(color.Bold, color.FgYellow)
	titleColor   = color.New(color.Bold)
)

// swatch is the glyph painted in a preset colour.
const swatch = "██"

func scalar(rec *preset.Record, key string) string {
	v, err := rec.Field(key)
	if err != nil {
		return "?"
	}
	return strconv.Itoa(v)
}

func rgbText(rec *preset.Record, name string) string {
	c, err := rec.Color(name)
	if err != nil {
		return "?"
	}
	return c.String()
}

// renderSlotTable summarises active slots, one row per slot.
func renderSlotTable(active []preset.Slot) string {
	rows := make([][]string, 0, len(active))
	for _, s := range active {
		rows = append(rows, []string{
			strconv.Itoa(s.Index + 1),
			s.Record.BodyType().String(),
			scalar(s.Record, "face_model"),
			scalar(s.Record, "hair_model"),
			scalar(s.Record, "apparent_age"),
			rgbText(s.Record, "skin_color"),
			rgbText(s.Record, "hair_color"),
		})
	}

	t := table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(borderStyle).
		BorderHeader(true).
		BorderRow(false).
		Headers("Slot", "Body Type", "Face", "Hair", "Age", "Skin Color", "Hair Color").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return cellStyle
		})

	return t.Render()
}

// hiddenColors maps cosmetic colour fields to the intensity that enables
// them.
func hiddenColors() map[string]string {
	m := make(map[string]string, len(preset.CosmeticColors))
	for _, pair := range preset.CosmeticColors {
		m[pair.Color] = pair.Intensity
	}
	return m
}

// writeRecordInfo prints every field of rec grouped by section. Cosmetic
// colours are skipped while their intensity is zero.
func writeRecordInfo(w io.Writer, slot int, rec *preset.Record) error {
	rule := strings.Repeat("=", 60)
	fmt.Fprintln(w, rule)
	titleColor.Fprintf(w, "PRESET SLOT %d\n", slot)
	fmt.Fprintln(w, rule)
	fmt.Fprintf(w, "Body Type: %s\n", rec.BodyType())

	gated := hiddenColors()
	group := ""
	for _, f := range rec.Schema().Fields() {
		if f.Name == preset.BodyTypeField {
			continue
		}
		if intensity, ok := gated[f.Name]; ok {
			if v, err := rec.Field(intensity); err == nil && v == 0 {
				continue
			}
		}

		if f.Group != group {
			group = f.Group
			fmt.Fprintln(w)
			sectionColor.Fprintln(w, strings.ToUpper(group)+":")
		}

		if f.Kind == preset.KindRGB8 {
			c, err := rec.Color(f.Name)
			if err != nil {
				return err
			}
			paint := color.RGB(int(c.R), int(c.G), int(c.B))
			fmt.Fprintf(w, "  %-28s RGB(%3d, %3d, %3d) %s\n", f.Label()+":", c.R, c.G, c.B, paint.Sprint(swatch))
			continue
		}

		v, err := rec.Field(f.Name)
		if err != nil {
			return err
		}
		fmt.Fprintf(w, "  %-28s %d\n", f.Label()+":", v)
	}

	fmt.Fprintln(w, rule)
	return nil
}
