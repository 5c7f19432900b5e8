package pdf

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// runeWrapper wraps every n runes so line counts are predictable.
type runeWrapper struct{ n int }

func (r runeWrapper) SplitText(text string, _ Style, _ float64) []string {
	runes := []rune(text)
	var out []string
	for len(runes) > r.n {
		out = append(out, string(runes[:r.n]))
		runes = runes[r.n:]
	}
	return append(out, string(runes))
}

var meta = Meta{ReportName: "cbc.pdf", PatientName: "Ana", Date: "Mar 9, 2026"}

func texts(in []Instruction) []Instruction {
	var out []Instruction
	for _, i := range in {
		if i.Op == OpText {
			out = append(out, i)
		}
	}
	return out
}

func TestEmitHeaderAndClassification(t *testing.T) {
	got := Emit("AI **Analysis**\n\n1. Main Findings\nGlucose high\nIron LOW\nSodium normal", meta, runeWrapper{n: 200})

	require.Len(t, got, 4+1+1+3*2)
	assert.Equal(t, Instruction{Op: OpText, X: 20, Y: 30, Text: "Medical Lab Report Analysis", Style: titleStyle}, got[0])
	assert.Equal(t, "Report: cbc.pdf", got[1].Text)
	assert.Equal(t, 45.0, got[1].Y)
	assert.Equal(t, "Patient: Ana", got[2].Text)
	assert.Equal(t, "Date: Mar 9, 2026", got[3].Text)
	assert.Equal(t, 65.0, got[3].Y)

	assert.Equal(t, Instruction{Op: OpText, X: 20, Y: 80, Text: "AI Analysis", Style: firstStyle}, got[4])
	// cursor is below 100, so no extra gap before the heading
	assert.Equal(t, Instruction{Op: OpText, X: 20, Y: 87, Text: "1. Main Findings", Style: headingStyle}, got[5])

	assert.Equal(t, Instruction{Op: OpText, X: 20, Y: 94, Text: "•", Style: bodyStyle}, got[6])
	assert.Equal(t, 25.0, got[7].X)
	assert.Equal(t, AlertRed, got[7].Style.Color)
	assert.Equal(t, AlertOrange, got[9].Style.Color)
	assert.Equal(t, BodyGray, got[11].Style.Color)
	assert.Equal(t, 108.0, got[11].Y)
}

func TestEmitColorOverrideAppliesToHeadings(t *testing.T) {
	got := texts(Emit("Title with critical note\n2. High risk items", meta, runeWrapper{n: 200}))

	assert.Equal(t, AlertRed, got[4].Style.Color)
	assert.True(t, got[4].Style.Bold)
	assert.Equal(t, AlertRed, got[5].Style.Color)
	assert.Equal(t, 11.0, got[5].Style.Size)
}

func TestEmitWrapsAndAdvancesPerLine(t *testing.T) {
	got := texts(Emit("T\n"+strings.Repeat("a", 25), meta, runeWrapper{n: 10}))

	// title, bullet, three wrapped parts
	require.Len(t, got, 4+1+1+3)
	assert.Equal(t, []float64{87, 94, 101}, []float64{got[6].Y, got[7].Y, got[8].Y})
}

func TestEmitHeadingGapPastThreshold(t *testing.T) {
	text := "T\n" + strings.Repeat("x\n", 4) + "3. Results"
	got := texts(Emit(text, meta, runeWrapper{n: 200}))

	// T at 80, bullets at 87..108, heading cursor 115 > 100 gets +5
	last := got[len(got)-1]
	assert.Equal(t, "3. Results", last.Text)
	assert.Equal(t, 120.0, last.Y)
}

func TestEmitPageBreak(t *testing.T) {
	text := "T\n" + strings.Repeat("row\n", 40)
	got := Emit(text, meta, runeWrapper{n: 200})

	var breaks int
	for i, in := range got {
		if in.Op != OpPageBreak {
			if in.Op == OpText {
				assert.LessOrEqual(t, in.Y, 277.0)
			}
			continue
		}
		breaks++
		// first instruction after a break sits at the top margin
		assert.Equal(t, 20.0, got[i+1].Y)
	}
	assert.Equal(t, 1, breaks)
}

func TestEmitEmptyText(t *testing.T) {
	got := Emit(" \n ", meta, runeWrapper{n: 200})

	require.Len(t, got, 5)
	assert.Equal(t, "No analysis available.", got[4].Text)
	assert.Equal(t, firstStyle, got[4].Style)
}

func TestExportWritesPDF(t *testing.T) {
	var buf bytes.Buffer

	err := Export(&buf, "AI Analysis\n1. Main Findings\nHemoglobin: 9.2 — Low (Ref: 13-17)", meta)

	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(buf.Bytes(), []byte("%PDF-")))
}

func TestWriterSplitText(t *testing.T) {
	w := NewWriter()

	lines := w.SplitText(strings.Repeat("word ", 80), bodyStyle, wrapWidth)

	assert.Greater(t, len(lines), 1)
	for _, l := range lines {
		assert.NotEmpty(t, l)
	}
	assert.Nil(t, w.SplitText("   ", bodyStyle, wrapWidth))
}
