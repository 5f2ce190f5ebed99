package logger

import (
	"bytes"
	"context"
	"strings"
	"testing"
)

func TestWithContext(t *testing.T) {
	tests := []struct {
		name    string
		ctx     context.Context
		want    []string
		notWant []string
	}{
		{
			name:    "无上下文字段",
			ctx:     context.Background(),
			notWant: []string{"request_id", "run_id"},
		},
		{
			name: "请求和排班ID",
			ctx: context.WithValue(
				context.WithValue(context.Background(), RequestIDKey, "req-1"),
				RunIDKey, "run-1"),
			want: []string{`"request_id":"req-1"`, `"run_id":"run-1"`},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			l := WithContext(tt.ctx).Output(&buf)
			l.Info().Msg("测试")

			out := buf.String()
			for _, w := range tt.want {
				if !strings.Contains(out, w) {
					t.Errorf("output missing %s: %s", w, out)
				}
			}
			for _, w := range tt.notWant {
				if strings.Contains(out, w) {
					t.Errorf("output should not contain %s: %s", w, out)
				}
			}
		})
	}
}

func TestParseLevel(t *testing.T) {
	tests := map[string]string{
		"debug":   "debug",
		"warning": "warn",
		"off":     "disabled",
		"bogus":   "info",
	}
	for in, want := range tests {
		if got := parseLevel(in).String(); got != want {
			t.Errorf("parseLevel(%q) = %s, expected %s", in, got, want)
		}
	}
}
