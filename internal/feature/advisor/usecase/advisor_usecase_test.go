package usecase

import (
	"context"
	"errors"
	"strings"
	"testing"

	"finance_linebot/internal/feature/indicators"
	"finance_linebot/internal/shared/fetcherr"
)

// mockAnalyzer is a func-field mock for the Analyzer interface.
type mockAnalyzer struct {
	AnalyzeFunc func(ctx context.Context, prompt string) (string, error)
}

func (m *mockAnalyzer) Analyze(ctx context.Context, prompt string) (string, error) {
	if m.AnalyzeFunc != nil {
		return m.AnalyzeFunc(ctx, prompt)
	}
	return "", errors.New("AnalyzeFunc is not implemented")
}

func f64(v float64) *float64 { return &v }

func snapshot() *indicators.Snapshot {
	delta := int64(500)
	return &indicators.Snapshot{
		Close:         648,
		Change:        4,
		ChangePercent: 0.62,
		RSI:           f64(55.3),
		MACDHist:      f64(1.2),
		SMA20:         f64(630),
		BBUpper:       f64(660),
		BBLower:       f64(610),
		VolumeDelta:   &delta,
	}
}

// TestParseAdvisory_JSONVariants covers clean JSON, fenced JSON and prose.
func TestParseAdvisory_JSONVariants(t *testing.T) {
	t.Parallel()

	const body = `{"sentiment":"看多","support_price":620.0,"resistance_price":660.0,"action":"拉回 630 進場","reason":"多頭排列","formatted_text":"完整報告"}`

	tests := []struct {
		name          string
		text          string
		wantSentiment string
		wantSupport   *float64
		wantText      string
	}{
		{
			name:          "plain json",
			text:          body,
			wantSentiment: "看多",
			wantSupport:   f64(620),
			wantText:      "完整報告",
		},
		{
			name:          "json wrapped in ```json fence",
			text:          "```json\n" + body + "\n```",
			wantSentiment: "看多",
			wantSupport:   f64(620),
			wantText:      "完整報告",
		},
		{
			name:          "json wrapped in bare fence",
			text:          "```\n" + body + "\n```",
			wantSentiment: "看多",
			wantSupport:   f64(620),
			wantText:      "完整報告",
		},
		{
			name:          "prose falls back to raw text",
			text:          "目前走勢偏多，建議逢低佈局。",
			wantSentiment: "未知",
			wantSupport:   nil,
			wantText:      "目前走勢偏多，建議逢低佈局。",
		},
		{
			name:          "malformed json falls back to raw text",
			text:          `{"sentiment": "看多",`,
			wantSentiment: "未知",
			wantSupport:   nil,
			wantText:      `{"sentiment": "看多",`,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			adv := ParseAdvisory(tc.text)
			if adv.Sentiment != tc.wantSentiment {
				t.Errorf("sentiment = %q, want %q", adv.Sentiment, tc.wantSentiment)
			}
			if adv.FormattedText != tc.wantText {
				t.Errorf("formatted text = %q, want %q", adv.FormattedText, tc.wantText)
			}
			if (adv.SupportPrice == nil) != (tc.wantSupport == nil) {
				t.Fatalf("support presence = %v, want %v", adv.SupportPrice, tc.wantSupport)
			}
			if adv.SupportPrice != nil && *adv.SupportPrice != *tc.wantSupport {
				t.Errorf("support = %v, want %v", *adv.SupportPrice, *tc.wantSupport)
			}
		})
	}
}

// TestBuildPrompt_MissingIndicators asserts nil indicators render as 無資料,
// never as a zero that the model would read as a price.
func TestBuildPrompt_MissingIndicators(t *testing.T) {
	t.Parallel()

	snap := &indicators.Snapshot{Close: 100, ChangePercent: 1.5}
	prompt := BuildPrompt("2330", "台積電", snap)

	if !strings.Contains(prompt, "RSI (14): 無資料") {
		t.Error("nil RSI should render as 無資料")
	}
	if strings.Contains(prompt, "RSI (14): 0.00") {
		t.Error("nil RSI must not render as 0.00")
	}
	if !strings.Contains(prompt, "台積電 (2330)") {
		t.Error("prompt should name the instrument")
	}
}

// TestAdvisorUsecase_Analyze wires the mock through the full flow.
func TestAdvisorUsecase_Analyze(t *testing.T) {
	t.Parallel()

	uc := NewAdvisorUsecase(&mockAnalyzer{
		AnalyzeFunc: func(ctx context.Context, prompt string) (string, error) {
			if !strings.Contains(prompt, "648.00") {
				t.Errorf("prompt should embed the close price, got: %s", prompt)
			}
			return `{"sentiment":"盤整","formatted_text":"區間整理"}`, nil
		},
	})

	adv, err := uc.Analyze(context.Background(), "2330", "台積電", snapshot())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if adv.Sentiment != "盤整" || adv.FormattedText != "區間整理" {
		t.Errorf("unexpected advisory: %+v", adv)
	}
}

// TestAdvisorUsecase_QuotaPropagates keeps the retry-later sentinel intact.
func TestAdvisorUsecase_QuotaPropagates(t *testing.T) {
	t.Parallel()

	uc := NewAdvisorUsecase(&mockAnalyzer{
		AnalyzeFunc: func(ctx context.Context, prompt string) (string, error) {
			return "", fetcherr.ErrQuotaExceeded
		},
	})

	_, err := uc.Analyze(context.Background(), "2330", "台積電", snapshot())
	if !errors.Is(err, fetcherr.ErrQuotaExceeded) {
		t.Errorf("expected ErrQuotaExceeded, got %v", err)
	}
}
