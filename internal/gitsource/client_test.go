package gitsource

import (
	stderrors "errors"
	"testing"

	"git.home.luguber.info/inful/imageforge/internal/errors"
)

func TestClassifyCloneError(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantKind errors.Kind
	}{
		{"auth failure", stderrors.New("authentication required"), errors.KindSecurity},
		{"missing repo", stderrors.New("repository not found"), errors.KindValidation},
		{"timeout", stderrors.New("dial tcp: i/o timeout"), errors.KindNetwork},
		{"refused", stderrors.New("connection refused"), errors.KindNetwork},
		{"other", stderrors.New("object not found"), errors.KindNetwork},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			rec := classifyCloneError("https://example.com/app.git", test.err)
			if rec.Kind != test.wantKind {
				t.Errorf("Kind = %s, want %s", rec.Kind, test.wantKind)
			}
			if rec.Details["url"] != "https://example.com/app.git" {
				t.Errorf("url detail = %v", rec.Details["url"])
			}
			if !stderrors.Is(rec, test.err) {
				t.Error("record must wrap the original error")
			}
		})
	}
}

func TestRepoName(t *testing.T) {
	tests := []struct {
		url  string
		want string
	}{
		{"https://github.com/example/my-app.git", "my-app"},
		{"https://github.com/example/my-app", "my-app"},
		{"", "source"},
	}
	for _, test := range tests {
		if got := repoName(test.url); got != test.want {
			t.Errorf("repoName(%q) = %q, want %q", test.url, got, test.want)
		}
	}
}
