package format

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zhouzirui/vetchat/internal/model/document"
)

func TestFormatEmptyInput(t *testing.T) {
	doc := Format("")
	assert.Empty(t, doc.Blocks)
}

func TestFormatWhitespaceOnly(t *testing.T) {
	doc := Format("   ")
	require.Len(t, doc.Blocks, 1)
	assert.Equal(t, document.Paragraph{}, doc.Blocks[0])

	doc = Format(" \n\t\n  ")
	require.Len(t, doc.Blocks, 1)
	assert.Equal(t, document.Paragraph{}, doc.Blocks[0])
}

func TestFormatBold(t *testing.T) {
	doc := Format("**bold**")
	require.Len(t, doc.Blocks, 1)
	assert.Equal(t, document.Paragraph{Runs: []document.Run{document.Bold("bold")}}, doc.Blocks[0])
}

func TestFormatBulletList(t *testing.T) {
	doc := Format("* a\n* b")
	require.Len(t, doc.Blocks, 1)
	assert.Equal(t, document.BulletList{Items: [][]document.Run{
		{document.Text("a")},
		{document.Text("b")},
	}}, doc.Blocks[0])
}

func TestFormatLabeledSection(t *testing.T) {
	doc := Format("Symptoms:\n* fever\n* cough")
	require.Len(t, doc.Blocks, 1)
	assert.Equal(t, document.LabeledSection{
		Label: "Symptoms",
		Body: document.BulletList{Items: [][]document.Run{
			{document.Text("fever")},
			{document.Text("cough")},
		}},
	}, doc.Blocks[0])
}

func TestFormatLabelVariants(t *testing.T) {
	cases := map[string]string{
		"**Treatment:**\n* rest":  "Treatment",
		"**Treatment**:\n* rest":  "Treatment",
		"treatment:\n* rest":      "treatment",
		"  Treatment :\n- rest":   "Treatment",
		"அறிகுறிகள்:\n🟢 காய்ச்சல்": "அறிகுறிகள்",
	}
	for input, label := range cases {
		doc := Format(input)
		require.Len(t, doc.Blocks, 1, input)
		section, ok := doc.Blocks[0].(document.LabeledSection)
		require.True(t, ok, input)
		assert.Equal(t, label, section.Label, input)
		list, ok := section.Body.(document.BulletList)
		require.True(t, ok, input)
		assert.Len(t, list.Items, 1, input)
	}
}

func TestFormatLabelWithInlineBody(t *testing.T) {
	doc := Format("Definition: A **viral** disease.")
	require.Len(t, doc.Blocks, 1)
	assert.Equal(t, document.LabeledSection{
		Label: "Definition",
		Body: document.Paragraph{Runs: []document.Run{
			document.Text("A "),
			document.Bold("viral"),
			document.Text(" disease."),
		}},
	}, doc.Blocks[0])
}

func TestFormatLabelWithoutBody(t *testing.T) {
	doc := Format("Ingredients:")
	require.Len(t, doc.Blocks, 1)
	assert.Equal(t, document.LabeledSection{Label: "Ingredients", Body: document.Paragraph{}}, doc.Blocks[0])
}

func TestFormatUnknownLabelIsParagraph(t *testing.T) {
	doc := Format("Weather: sunny")
	require.Len(t, doc.Blocks, 1)
	assert.Equal(t, document.Paragraph{Runs: []document.Run{document.Text("Weather: sunny")}}, doc.Blocks[0])
}

func TestFormatUnclosedBoldLabelIsParagraph(t *testing.T) {
	doc := Format("**Symptoms: fever")
	require.Len(t, doc.Blocks, 1)
	assert.Equal(t, document.Paragraph{Runs: []document.Run{document.Text("**Symptoms: fever")}}, doc.Blocks[0])
}

func TestFormatSectionsSplitWithoutBlankLines(t *testing.T) {
	doc := Format("**Mastitis**\nSymptoms:\n* swelling\nTreatment:\n* antibiotics")
	require.Len(t, doc.Blocks, 3)
	assert.Equal(t, document.Paragraph{Runs: []document.Run{document.Bold("Mastitis")}}, doc.Blocks[0])
	assert.Equal(t, "Symptoms", doc.Blocks[1].(document.LabeledSection).Label)
	assert.Equal(t, "Treatment", doc.Blocks[2].(document.LabeledSection).Label)
}

func TestFormatParagraphsAndLineBreaks(t *testing.T) {
	doc := Format("first line\nsecond line\n\n\nnext paragraph")
	require.Len(t, doc.Blocks, 2)
	assert.Equal(t, document.Paragraph{Runs: []document.Run{
		document.Text("first line"),
		document.LineBreak(),
		document.Text("second line"),
	}}, doc.Blocks[0])
	assert.Equal(t, document.Paragraph{Runs: []document.Run{document.Text("next paragraph")}}, doc.Blocks[1])
}

func TestFormatCRLF(t *testing.T) {
	doc := Format("* a\r\n* b\r\n\r\nend")
	require.Len(t, doc.Blocks, 2)
	assert.Len(t, doc.Blocks[0].(document.BulletList).Items, 2)
}

func TestFormatUnterminatedBoldIsLiteral(t *testing.T) {
	doc := Format("a **b")
	require.Len(t, doc.Blocks, 1)
	assert.Equal(t, document.Paragraph{Runs: []document.Run{document.Text("a **b")}}, doc.Blocks[0])

	doc = Format("**a** and **b")
	assert.Equal(t, document.Paragraph{Runs: []document.Run{
		document.Bold("a"),
		document.Text(" and **b"),
	}}, doc.Blocks[0])
}

func TestFormatEmptyBoldIsLiteral(t *testing.T) {
	doc := Format("x **** y")
	assert.Equal(t, document.Paragraph{Runs: []document.Run{document.Text("x **** y")}}, doc.Blocks[0])
}

func TestFormatBulletRecovery(t *testing.T) {
	doc := Format("* first\ncontinued here\n* second")
	require.Len(t, doc.Blocks, 1)
	assert.Equal(t, document.BulletList{Items: [][]document.Run{
		{document.Text("first"), document.Text(" continued here")},
		{document.Text("second")},
	}}, doc.Blocks[0])
}

func TestFormatBulletWithBold(t *testing.T) {
	doc := Format("- **Give** water\n• rest")
	assert.Equal(t, document.BulletList{Items: [][]document.Run{
		{document.Bold("Give"), document.Text(" water")},
		{document.Text("rest")},
	}}, doc.Blocks[0])
}

func TestFormatBoldLineIsNotBullet(t *testing.T) {
	doc := Format("**Note** this")
	_, isList := doc.Blocks[0].(document.BulletList)
	assert.False(t, isList)
}

func TestFormatEscapesMarkup(t *testing.T) {
	doc := Format("<script>alert('x')</script> & **<b>hi</b>**")
	require.Len(t, doc.Blocks, 1)
	assert.Equal(t, document.Paragraph{Runs: []document.Run{
		document.Text("&lt;script&gt;alert(&#39;x&#39;)&lt;/script&gt; &amp; "),
		document.Bold("&lt;b&gt;hi&lt;/b&gt;"),
	}}, doc.Blocks[0])
}

func TestFormatSanitizesEveryLeaf(t *testing.T) {
	inputs := []string{
		"<img src=x onerror=alert(1)>",
		"Symptoms:\n* <b>fever</b>\nstray <i>line</i>",
		"**<u>** <u>**",
		"* a\x00b\x1b[31m",
		"Treatment: use \"salt\" & 'water' <now>",
		"***x*** **a **b** c**",
		"\u202eevil",
	}
	for _, input := range inputs {
		doc := Format(input)
		forEachLeaf(doc, func(text string) {
			assert.NotContains(t, text, "<", input)
			assert.NotContains(t, text, ">", input)
			assert.NotContains(t, text, "\x00", input)
			assert.NotContains(t, text, "\x1b", input)
			assert.NotContains(t, text, "\u202e", input)
			assert.False(t, strings.Contains(strings.ReplaceAll(text, "&amp;", ""), "& "), input)
		})
	}
}

func TestFormatReplacesInvalidUTF8(t *testing.T) {
	doc := Format("\xff\xfe bad")
	require.Len(t, doc.Blocks, 1)
	assert.Equal(t, document.Paragraph{Runs: []document.Run{
		document.Text("\uFFFD\uFFFD bad"),
	}}, doc.Blocks[0])
}

func TestFormatCustomLabels(t *testing.T) {
	f := New("Dose")
	doc := f.Format("Dose:\n* 5ml")
	_, ok := doc.Blocks[0].(document.LabeledSection)
	assert.True(t, ok)

	doc = f.Format("Symptoms:\n* fever")
	_, ok = doc.Blocks[0].(document.LabeledSection)
	assert.False(t, ok)
}

func TestFormatIsDeterministic(t *testing.T) {
	raw := "**Bloat**\n\nSymptoms:\n* swelling\n* distress\n\nTreatment:\n* walk the animal"
	assert.Equal(t, Format(raw), Format(raw))
}

func TestFormatPlainTextRoundTrip(t *testing.T) {
	doc := Format("**Bloat**\n\nSymptoms:\n* swelling\n* distress")
	assert.Equal(t, "Bloat\n\nSymptoms:\n• swelling\n• distress", doc.PlainText())
}

func forEachLeaf(doc document.Document, fn func(string)) {
	var visit func(document.Block)
	visitRuns := func(runs []document.Run) {
		for _, r := range runs {
			fn(r.Text)
		}
	}
	visit = func(b document.Block) {
		switch v := b.(type) {
		case document.Paragraph:
			visitRuns(v.Runs)
		case document.BulletList:
			for _, item := range v.Items {
				visitRuns(item)
			}
		case document.LabeledSection:
			fn(v.Label)
			visit(v.Body)
		}
	}
	for _, b := range doc.Blocks {
		visit(b)
	}
}
