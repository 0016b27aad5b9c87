package chat

import "testing"

func TestClassify_Sentinels(t *testing.T) {
	cases := map[string]Render{
		"#":  OpenPlotSelector{},
		"#1": RenderChart{Kind: ChartBar},
		"#2": RenderChart{Kind: ChartPie},
		"#3": RenderChart{Kind: ChartScatter},
		"#4": RenderChart{Kind: ChartLine},
	}
	seen := make(map[Render]string)
	for text, want := range cases {
		got := Classify(text)
		if got != want {
			t.Fatalf("Classify(%q) = %#v, want %#v", text, got, want)
		}
		if prev, dup := seen[got]; dup {
			t.Fatalf("%q and %q map to the same renderer", prev, text)
		}
		seen[got] = text
	}
}

func TestClassify_PieChartOnly(t *testing.T) {
	r, ok := Classify("#2").(RenderChart)
	if !ok || r.Kind != ChartPie {
		t.Fatalf("expected pie chart, got %#v", Classify("#2"))
	}
}

func TestClassify_EverythingElseIsPlain(t *testing.T) {
	for _, text := range []string{"", "hola", "#5", "#0", " #1", "#1 ", "##", "# ", "BarPlot"} {
		got, ok := Classify(text).(PlainText)
		if !ok {
			t.Fatalf("Classify(%q) should be plain, got %#v", text, Classify(text))
		}
		if got.Text != text {
			t.Fatalf("plain text must be verbatim: %q vs %q", got.Text, text)
		}
	}
}

func TestChartKindString(t *testing.T) {
	want := map[ChartKind]string{ChartBar: "bar", ChartPie: "pie", ChartScatter: "scatter", ChartLine: "line", 0: "unknown"}
	for k, s := range want {
		if k.String() != s {
			t.Fatalf("%d.String() = %q, want %q", k, k.String(), s)
		}
	}
}
