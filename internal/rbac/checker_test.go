package rbac

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCheckerDefaults(t *testing.T) {
	c := NewChecker(nil)
	cases := []struct {
		role, perm string
		want       bool
	}{
		{"viewer", "rubric:view", true},
		{"viewer", "rubric:create", false},
		{"viewer", "report:export", false},
		{"evaluator", "evaluation:delete", true},
		{"evaluator", "events:view", false},
		{"auditor", "report:export", true},
		{"auditor", "report:view", false},
		{"auditor", "rubric:view", false},
		{"admin", "events:view", true},
		{"", "rubric:view", false},
		{"ghost", "rubric:view", false},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, c.Has(tc.role, tc.perm), "%s %s", tc.role, tc.perm)
	}
	assert.True(t, c.Any("viewer", "rubric:create", "rubric:view"))
	assert.True(t, c.Any("auditor", "report:view", "report:export"))
	assert.False(t, c.Any("auditor", "rubric:view", "candidate:view"))
}

func TestRequire(t *testing.T) {
	ok := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusNoContent) })
	h := Require("rubric:create")(ok)

	for role, code := range map[string]int{"": http.StatusForbidden, "viewer": http.StatusForbidden, "evaluator": http.StatusNoContent} {
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/", nil)
		req = req.WithContext(WithRole(context.Background(), role))
		h.ServeHTTP(rec, req)
		assert.Equal(t, code, rec.Code, role)
	}

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/", nil).WithContext(WithRole(context.Background(), "viewer"))
	RequireAny("report:view", "report:export")(ok).ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNoContent, rec.Code)
}
