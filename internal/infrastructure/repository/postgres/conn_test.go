package postgres

import (
	"strings"
	"testing"
)

func TestConnOptions_DSN(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		opts    ConnOptions
		want    string
		wantSub string
	}{
		{
			name: "flag off keeps url",
			opts: ConnOptions{URL: "postgres://u:p@localhost:5432/mlbb_squads?sslmode=disable"},
			want: "postgres://u:p@localhost:5432/mlbb_squads?sslmode=disable",
		},
		{
			name:    "flag on appends to url",
			opts:    ConnOptions{URL: "postgres://u:p@localhost:5432/mlbb_squads?sslmode=disable", DisablePreparedBinaryResult: true},
			wantSub: "disable_prepared_binary_result=yes",
		},
		{
			name: "explicit url value wins",
			opts: ConnOptions{URL: "postgres://u:p@localhost/mlbb_squads?disable_prepared_binary_result=no", DisablePreparedBinaryResult: true},
			want: "postgres://u:p@localhost/mlbb_squads?disable_prepared_binary_result=no",
		},
		{
			name: "flag on appends to keyword dsn",
			opts: ConnOptions{URL: "host=localhost dbname=mlbb_squads", DisablePreparedBinaryResult: true},
			want: "host=localhost dbname=mlbb_squads disable_prepared_binary_result=yes",
		},
		{
			name: "explicit keyword value wins",
			opts: ConnOptions{URL: "host=localhost disable_prepared_binary_result=no", DisablePreparedBinaryResult: true},
			want: "host=localhost disable_prepared_binary_result=no",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			got := tc.opts.DSN()
			if tc.want != "" && got != tc.want {
				t.Fatalf("DSN() = %q, want %q", got, tc.want)
			}
			if tc.wantSub != "" && !strings.Contains(got, tc.wantSub) {
				t.Fatalf("DSN() = %q, want it to contain %q", got, tc.wantSub)
			}
		})
	}
}

func TestConnOptions_DatabaseName(t *testing.T) {
	t.Parallel()

	for raw, want := range map[string]string{
		"postgres://u:p@localhost:5432/mlbb_squads?sslmode=disable":       "mlbb_squads",
		"postgresql://localhost/other":                                    "other",
		"host=localhost user=postgres dbname=mlbb_squads sslmode=disable": "mlbb_squads",
		"host=localhost dbname='quoted'":                                  "quoted",
		"postgres://localhost":                                            "",
	} {
		if got := (ConnOptions{URL: raw}).DatabaseName(); got != want {
			t.Fatalf("DatabaseName(%q) = %q, want %q", raw, got, want)
		}
	}
}

func TestTraceQuery(t *testing.T) {
	t.Parallel()

	if got := traceQuery(" SELECT   *\nFROM players \t WHERE id = $1 "); got != "SELECT * FROM players WHERE id = $1" {
		t.Fatalf("unexpected traced query: %q", got)
	}

	long := "SELECT '" + strings.Repeat("é", 600) + "'"
	got := traceQuery(long)
	if !strings.HasSuffix(got, "...") || len([]rune(got)) != maxTracedQueryRune+3 {
		t.Fatalf("expected query capped at %d characters, got %d", maxTracedQueryRune, len([]rune(got)))
	}
}
