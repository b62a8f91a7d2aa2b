package schema

import (
	"testing"

	"github.com/getkin/kin-openapi/openapi3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Zachacious/rs-respec/internal/model"
	"github.com/Zachacious/rs-respec/internal/resolver"
	"github.com/Zachacious/rs-respec/internal/syntax"
)

func newGenerator(t *testing.T, src string) *Generator {
	t.Helper()
	f, err := syntax.ParseFile("types.rs", []byte(src))
	require.NoError(t, err)
	return NewGenerator(resolver.New([]*syntax.File{f}, nil), nil)
}

func component(t *testing.T, g *Generator, name string) *openapi3.Schema {
	t.Helper()
	s, ok := g.Catalog().Get(name)
	require.True(t, ok, "no component %s", name)
	require.NotNil(t, s)
	return s
}

func TestPrimitiveSchemas(t *testing.T) {
	g := newGenerator(t, ``)
	cases := []struct {
		name   string
		typ    string
		format string
	}{
		{"i8", openapi3.TypeInteger, "int32"},
		{"u32", openapi3.TypeInteger, "int32"},
		{"i64", openapi3.TypeInteger, "int64"},
		{"usize", openapi3.TypeInteger, "int64"},
		{"u128", openapi3.TypeInteger, "int64"},
		{"f32", openapi3.TypeNumber, "float"},
		{"f64", openapi3.TypeNumber, "double"},
		{"bool", openapi3.TypeBoolean, ""},
		{"String", openapi3.TypeString, ""},
		{"str", openapi3.TypeString, ""},
		{"char", openapi3.TypeString, ""},
	}
	for _, tc := range cases {
		t.Run("should map "+tc.name, func(t *testing.T) {
			ref := g.GenerateSchema(model.NewType(tc.name))
			require.NotNil(t, ref.Value)
			assert.Empty(t, ref.Ref)
			assert.True(t, ref.Value.Type.Is(tc.typ))
			assert.Equal(t, tc.format, ref.Value.Format)
		})
	}
	assert.Zero(t, g.Catalog().Len())
}

func TestWrappers(t *testing.T) {
	g := newGenerator(t, `pub struct User { pub id: u64 }`)

	t.Run("should unwrap Option", func(t *testing.T) {
		ref := g.GenerateSchema(model.OptionOf(model.NewType("String")))
		assert.True(t, ref.Value.Type.Is(openapi3.TypeString))
	})

	t.Run("should turn Vec into an array", func(t *testing.T) {
		ref := g.GenerateSchema(model.VecOf(model.NewType("User")))
		require.True(t, ref.Value.Type.Is(openapi3.TypeArray))
		require.NotNil(t, ref.Value.Items)
		assert.Equal(t, RefPrefix+"User", ref.Value.Items.Ref)
	})

	t.Run("should turn sets into arrays and maps into objects", func(t *testing.T) {
		set := g.GenerateSchema(model.NewType("HashSet", model.NewType("String")))
		assert.True(t, set.Value.Type.Is(openapi3.TypeArray))

		m := g.GenerateSchema(model.NewType("HashMap", model.NewType("String"), model.NewType("User")))
		require.True(t, m.Value.Type.Is(openapi3.TypeObject))
		require.NotNil(t, m.Value.AdditionalProperties.Schema)
		assert.Equal(t, RefPrefix+"User", m.Value.AdditionalProperties.Schema.Ref)
	})
}

func TestRecordSchemas(t *testing.T) {
	src := `
pub struct User {
    pub id: u32,
    pub name: String,
    pub email: Option<String>,
}

pub struct Response {
    pub data: Option<Vec<User>>,
}

#[derive(Serialize)]
#[serde(rename_all = "camelCase")]
pub struct Account {
    pub user_id: u32,
    #[serde(skip)]
    pub password_hash: String,
    #[serde(skip_serializing_if = "Option::is_none")]
    pub nick_name: Option<String>,
    #[serde(skip_serializing_if = "Vec::is_empty")]
    pub roles: Vec<Role>,
}

pub enum Role { Admin, Member }

pub struct Empty {}
`
	t.Run("should reference a record and emit it once", func(t *testing.T) {
		g := newGenerator(t, src)
		first := g.GenerateSchema(model.NewType("User"))
		second := g.GenerateSchema(model.NewType("User"))
		assert.Equal(t, RefPrefix+"User", first.Ref)
		assert.Equal(t, first.Ref, second.Ref)
		assert.Equal(t, []string{"User"}, g.Catalog().Names())

		user := component(t, g, "User")
		assert.True(t, user.Type.Is(openapi3.TypeObject))
		assert.Len(t, user.Properties, 3)
		assert.Equal(t, []string{"id", "name"}, user.Required)
		assert.Equal(t, "int32", user.Properties["id"].Value.Format)
	})

	t.Run("should emit an optional array of records", func(t *testing.T) {
		g := newGenerator(t, src)
		g.GenerateSchema(model.NewType("Response"))
		resp := component(t, g, "Response")
		data := resp.Properties["data"]
		require.NotNil(t, data)
		require.True(t, data.Value.Type.Is(openapi3.TypeArray))
		assert.Equal(t, RefPrefix+"User", data.Value.Items.Ref)
		assert.Empty(t, resp.Required)
		assert.Equal(t, []string{"Response", "User"}, g.Catalog().Names())
	})

	t.Run("should apply serde attributes", func(t *testing.T) {
		g := newGenerator(t, src)
		g.GenerateSchema(model.NewType("Account"))
		acct := component(t, g, "Account")
		assert.Contains(t, acct.Properties, "userId")
		assert.Contains(t, acct.Properties, "nickName")
		assert.Contains(t, acct.Properties, "roles")
		assert.NotContains(t, acct.Properties, "passwordHash")
		assert.Equal(t, []string{"userId", "roles"}, acct.Required)
	})

	t.Run("should emit enums as string enums", func(t *testing.T) {
		g := newGenerator(t, src)
		ref := g.GenerateSchema(model.NewType("Role"))
		assert.Equal(t, RefPrefix+"Role", ref.Ref)
		role := component(t, g, "Role")
		assert.True(t, role.Type.Is(openapi3.TypeString))
		assert.Equal(t, []any{"Admin", "Member"}, role.Enum)
	})

	t.Run("should emit an empty record as a bare object", func(t *testing.T) {
		g := newGenerator(t, src)
		g.GenerateSchema(model.NewType("Empty"))
		empty := component(t, g, "Empty")
		assert.True(t, empty.Type.Is(openapi3.TypeObject))
		assert.Empty(t, empty.Properties)
		assert.Nil(t, empty.Required)
	})

	t.Run("should fall back to an object for unknown types", func(t *testing.T) {
		g := newGenerator(t, src)
		ref := g.GenerateSchema(model.NewType("Missing"))
		assert.Empty(t, ref.Ref)
		assert.True(t, ref.Value.Type.Is(openapi3.TypeObject))
		assert.Zero(t, g.Catalog().Len())
	})
}

func TestSelfReference(t *testing.T) {
	src := `
pub struct Node {
    pub value: i32,
    pub children: Vec<Node>,
    pub parent: Option<Box<Node>>,
}

pub struct Ping { pub pong: Option<Pong> }
pub struct Pong { pub ping: Ping }
`
	t.Run("should terminate on a self-referencing record", func(t *testing.T) {
		g := newGenerator(t, src)
		ref := g.GenerateSchema(model.NewType("Node"))
		assert.Equal(t, RefPrefix+"Node", ref.Ref)

		node := component(t, g, "Node")
		assert.Equal(t, RefPrefix+"Node", node.Properties["children"].Value.Items.Ref)
		assert.Equal(t, RefPrefix+"Node", node.Properties["parent"].Ref)
		assert.Equal(t, []string{"value", "children"}, node.Required)
		assert.Equal(t, []string{"Node"}, g.Catalog().Names())
	})

	t.Run("should terminate on mutually recursive records", func(t *testing.T) {
		g := newGenerator(t, src)
		g.GenerateSchema(model.NewType("Ping"))
		assert.Equal(t, []string{"Ping", "Pong"}, g.Catalog().Names())
		assert.Equal(t, RefPrefix+"Ping", component(t, g, "Pong").Properties["ping"].Ref)
	})
}

func TestFlatten(t *testing.T) {
	src := `
pub struct Page {
    pub page: u32,
    pub per_page: Option<u32>,
}

pub struct Listing {
    pub total: u64,
    #[serde(flatten)]
    pub page: Page,
    #[serde(flatten)]
    pub extra: Option<Meta>,
    #[serde(flatten)]
    pub rest: HashMap<String, String>,
}

pub struct Meta { pub source: String }

pub struct Loop {
    pub id: u32,
    #[serde(flatten)]
    pub inner: Box<Loop>,
}
`
	t.Run("should merge flattened records into the parent", func(t *testing.T) {
		g := newGenerator(t, src)
		g.GenerateSchema(model.NewType("Listing"))
		listing := component(t, g, "Listing")
		assert.Contains(t, listing.Properties, "page")
		assert.Contains(t, listing.Properties, "per_page")
		assert.Contains(t, listing.Properties, "source")
		assert.Contains(t, listing.Properties, "rest")
		assert.Equal(t, []string{"total", "page", "rest"}, listing.Required)
		assert.False(t, g.Catalog().Has("Page"))
	})

	t.Run("should list a field shared with a flattened record as required once", func(t *testing.T) {
		g := newGenerator(t, `
pub struct Audit {
    pub id: u64,
    pub created_by: String,
}

pub struct Invoice {
    pub id: u64,
    #[serde(flatten)]
    pub audit: Audit,
}
`)
		g.GenerateSchema(model.NewType("Invoice"))
		invoice := component(t, g, "Invoice")
		assert.Equal(t, []string{"id", "created_by"}, invoice.Required)
		assert.Len(t, invoice.Properties, 2)
	})

	t.Run("should not flatten a record into itself", func(t *testing.T) {
		g := newGenerator(t, src)
		g.GenerateSchema(model.NewType("Loop"))
		loop := component(t, g, "Loop")
		assert.Contains(t, loop.Properties, "id")
	})
}

func TestGenerateParameterSchema(t *testing.T) {
	g := newGenerator(t, `pub struct Pagination { pub page: u32 }`)

	t.Run("should build a required path parameter", func(t *testing.T) {
		p := g.GenerateParameterSchema(model.Parameter{
			Name: "id", Location: model.LocationPath, Type: model.NewType("String"), Required: true,
		})
		assert.Equal(t, openapi3.ParameterInPath, p.In)
		assert.Equal(t, "id", p.Name)
		assert.True(t, p.Required)
		assert.True(t, p.Schema.Value.Type.Is(openapi3.TypeString))
	})

	t.Run("should build an optional query parameter", func(t *testing.T) {
		p := g.GenerateParameterSchema(model.Parameter{
			Name: "query_params", Location: model.LocationQuery, Type: model.NewType("Pagination"),
		})
		assert.Equal(t, openapi3.ParameterInQuery, p.In)
		assert.False(t, p.Required)
		assert.Equal(t, RefPrefix+"Pagination", p.Schema.Ref)
		assert.True(t, g.Catalog().Has("Pagination"))
	})

	t.Run("should build a header parameter", func(t *testing.T) {
		p := g.GenerateParameterSchema(model.Parameter{
			Name: "Authorization", Location: model.LocationHeader, Type: model.NewType("Authorization"), Required: true,
		})
		assert.Equal(t, openapi3.ParameterInHeader, p.In)
		assert.True(t, p.Required)
	})
}

func TestCatalog(t *testing.T) {
	t.Run("should keep first-seen order", func(t *testing.T) {
		c := NewCatalog()
		c.Set("b", openapi3.NewStringSchema())
		c.Set("a", openapi3.NewStringSchema())
		c.Set("b", openapi3.NewBoolSchema())
		assert.Equal(t, []string{"b", "a"}, c.Names())
		s, ok := c.Get("b")
		require.True(t, ok)
		assert.True(t, s.Type.Is(openapi3.TypeBoolean))
	})

	t.Run("should hand out one slot per name", func(t *testing.T) {
		c := NewCatalog()
		slot, ok := c.Reserve("x")
		require.True(t, ok)
		again, ok := c.Reserve("x")
		assert.False(t, ok)
		assert.Same(t, slot, again)
		assert.Len(t, c.Schemas(), 1)
	})
}
