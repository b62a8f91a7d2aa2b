package analyzer

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Zachacious/rs-respec/internal/model"
	"github.com/Zachacious/rs-respec/internal/testutil"
)

func analyze(t *testing.T, fixture string, opts Options) (*model.APIModel, error) {
	t.Helper()
	dir := testutil.Materialize(t, filepath.Join("testdata", fixture))
	if opts.Exclude == nil {
		opts.Exclude = []string{"target"}
	}
	return New(opts, nil).Analyze(context.Background(), dir)
}

func endpoints(routes []*model.RouteInfo) []string {
	out := make([]string, len(routes))
	for i, r := range routes {
		out[i] = fmt.Sprintf("%s %s %s", r.Method, r.Path, r.HandlerName)
	}
	return out
}

func route(t *testing.T, routes []*model.RouteInfo, method model.HTTPMethod, path string) *model.RouteInfo {
	t.Helper()
	for _, r := range routes {
		if r.Method == method && r.Path == path {
			return r
		}
	}
	require.Failf(t, "route not found", "%s %s", method, path)
	return nil
}

func TestAnalyzeAxum(t *testing.T) {
	api, err := analyze(t, "axum.txtar", Options{})
	require.NoError(t, err)

	t.Run("should detect only axum", func(t *testing.T) {
		assert.Equal(t, []model.Framework{model.FrameworkAxum}, api.Frameworks)
	})

	t.Run("should extract every route in discovery order", func(t *testing.T) {
		assert.Equal(t, []string{
			"GET /health health_check",
			"GET /users get_users",
			"POST /users create_user",
			"GET /users/:id get_user",
			"PUT /users/:id update_user",
			"DELETE /users/:id delete_user",
			"GET /api/v1/users get_users",
			"POST /api/v1/users create_user",
			"GET /api/v1/users/:id get_user",
			"GET /api/v1/health health_check",
		}, endpoints(api.Routes))
	})

	t.Run("should bind handlers across files", func(t *testing.T) {
		get := route(t, api.Routes, model.MethodGet, "/users/:id")
		require.Len(t, get.Parameters, 2)
		assert.Equal(t, "id", get.Parameters[0].Name)
		assert.Equal(t, "path_params", get.Parameters[1].Name)
		assert.Equal(t, model.NewType("u32"), get.Parameters[1].Type)
		require.NotNil(t, get.ResponseType)
		assert.Equal(t, "User", get.ResponseType.Name)

		list := route(t, api.Routes, model.MethodGet, "/users")
		require.Len(t, list.Parameters, 1)
		assert.Equal(t, model.LocationQuery, list.Parameters[0].Location)
		assert.Equal(t, model.VecOf(model.NewType("User")), *list.ResponseType)

		put := route(t, api.Routes, model.MethodPut, "/users/:id")
		require.NotNil(t, put.RequestBody)
		assert.Equal(t, "UpdateUserRequest", put.RequestBody.Name)

		del := route(t, api.Routes, model.MethodDelete, "/users/:id")
		assert.Nil(t, del.ResponseType)
	})

	t.Run("should generate schemas from the model", func(t *testing.T) {
		ref := api.Schemas.GenerateSchema(model.NewType("User"))
		assert.Equal(t, "#/components/schemas/User", ref.Ref)
		schemas := api.Schemas.Schemas()
		require.Contains(t, schemas, "Role")
		assert.Equal(t, []any{"admin", "regular_user"}, schemas["Role"].Value.Enum)
	})
}

func TestAnalyzeActix(t *testing.T) {
	api, err := analyze(t, "actix.txtar", Options{})
	require.NoError(t, err)

	assert.Equal(t, []model.Framework{model.FrameworkActix}, api.Frameworks)
	assert.Equal(t, []string{
		"GET /api/v1/users get_users",
		"GET /api/v1/users/{id} get_user",
		"POST /api/v1/users create_user",
		"DELETE /api/v1/users/{id} delete_user",
		"GET /health health_check",
	}, endpoints(api.Routes))

	t.Run("should bind actix extractors", func(t *testing.T) {
		create := route(t, api.Routes, model.MethodPost, "/api/v1/users")
		require.NotNil(t, create.RequestBody)
		assert.Equal(t, "CreateUserRequest", create.RequestBody.Name)
		assert.Nil(t, create.ResponseType)

		get := route(t, api.Routes, model.MethodGet, "/api/v1/users/{id}")
		require.Len(t, get.Parameters, 2)
		require.NotNil(t, get.ResponseType)
		assert.Equal(t, "User", get.ResponseType.Name)
	})
}

func TestAnalyzeMixed(t *testing.T) {
	t.Run("should run both extractors, axum first", func(t *testing.T) {
		api, err := analyze(t, "mixed.txtar", Options{})
		require.NoError(t, err)
		assert.Equal(t, []model.Framework{model.FrameworkAxum, model.FrameworkActix}, api.Frameworks)
		assert.Equal(t, []string{
			"GET /status status",
			"GET /admin/stats stats",
		}, endpoints(api.Routes))
	})

	t.Run("should run only the forced framework", func(t *testing.T) {
		api, err := analyze(t, "mixed.txtar", Options{Framework: model.FrameworkActix})
		require.NoError(t, err)
		assert.Equal(t, []model.Framework{model.FrameworkActix}, api.Frameworks)
		assert.Equal(t, []string{"GET /admin/stats stats"}, endpoints(api.Routes))
	})
}

func TestAnalyzeErrors(t *testing.T) {
	t.Run("should report a project without a framework", func(t *testing.T) {
		_, err := analyze(t, "plain.txtar", Options{})
		require.ErrorIs(t, err, ErrNoFramework)
		assert.Contains(t, err.Error(), "Supported frameworks: axum, actix-web")
	})

	t.Run("should analyze a forced framework without routes", func(t *testing.T) {
		api, err := analyze(t, "plain.txtar", Options{Framework: model.FrameworkAxum})
		require.NoError(t, err)
		assert.Empty(t, api.Routes)
		assert.Empty(t, api.Schemas.Schemas())
	})

	t.Run("should report a project without sources", func(t *testing.T) {
		_, err := analyze(t, "empty.txtar", Options{})
		assert.ErrorIs(t, err, ErrNoSourceFiles)
	})

	t.Run("should report a project where nothing parses", func(t *testing.T) {
		_, err := analyze(t, "broken.txtar", Options{})
		assert.ErrorIs(t, err, ErrNoParsedFiles)
	})

	t.Run("should report a missing project", func(t *testing.T) {
		_, err := New(Options{}, nil).Analyze(context.Background(), filepath.Join(t.TempDir(), "nope"))
		assert.Error(t, err)
	})

	t.Run("should stop when cancelled", func(t *testing.T) {
		dir := testutil.Materialize(t, filepath.Join("testdata", "axum.txtar"))
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		_, err := New(Options{}, nil).Analyze(ctx, dir)
		assert.ErrorIs(t, err, context.Canceled)
	})
}

func TestAnalyzeLogging(t *testing.T) {
	t.Run("should warn once per file that fails to parse", func(t *testing.T) {
		var buf bytes.Buffer
		logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
		dir := testutil.Materialize(t, filepath.Join("testdata", "axum.txtar"))

		_, err := New(Options{Exclude: []string{"target"}}, logger).Analyze(context.Background(), dir)
		require.NoError(t, err)

		var warnings []string
		for _, line := range strings.Split(buf.String(), "\n") {
			if strings.Contains(line, "level=WARN") && strings.Contains(line, "broken.rs") {
				warnings = append(warnings, line)
			}
		}
		assert.Len(t, warnings, 1)
	})
}
