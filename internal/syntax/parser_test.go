package syntax

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustParse(t *testing.T, src string) *File {
	t.Helper()
	f, err := ParseFile("test.rs", []byte(src))
	require.NoError(t, err)
	return f
}

// firstFnBody returns the statements of the first function in src.
func firstFnBody(t *testing.T, src string) []Stmt {
	t.Helper()
	f := mustParse(t, src)
	for _, it := range f.Items {
		if fn, ok := it.(*FnItem); ok {
			require.NotNil(t, fn.Body)
			return fn.Body.Stmts
		}
	}
	t.Fatal("no function in source")
	return nil
}

func parseExprSrc(t *testing.T, expr string) Expr {
	t.Helper()
	stmts := firstFnBody(t, "fn f() { "+expr+"; }")
	require.Len(t, stmts, 1)
	es, ok := stmts[0].(*ExprStmt)
	require.True(t, ok, "got %T", stmts[0])
	_, bad := es.X.(*BadExpr)
	require.False(t, bad, "expression did not parse: %s", expr)
	return es.X
}

func TestParseItems(t *testing.T) {
	t.Run("should parse use trees", func(t *testing.T) {
		f := mustParse(t, `
use axum::{routing::{get, post}, Router as R, extract::*};
pub(crate) use ::std::sync::Arc;
`)
		require.Len(t, f.Items, 2)
		u := f.Items[0].(*UseItem)
		root := u.Tree.(*UsePath)
		assert.Equal(t, "axum", root.Name)
		group := root.Tree.(*UseGroup)
		require.Len(t, group.Trees, 3)
		assert.IsType(t, &UsePath{}, group.Trees[0])
		rename := group.Trees[1].(*UseRename)
		assert.Equal(t, "Router", rename.Name)
		assert.Equal(t, "R", rename.Rename)
		glob := group.Trees[2].(*UsePath)
		assert.IsType(t, &UseGlob{}, glob.Tree)

		u2 := f.Items[1].(*UseItem)
		assert.Equal(t, "crate", u2.Vis.Restriction)
		assert.Equal(t, "std", u2.Tree.(*UsePath).Name)
	})

	t.Run("should parse function signatures", func(t *testing.T) {
		f := mustParse(t, `
#[get("/users/{id}")]
pub async fn get_user<'a, T: Clone>(
    Path(id): Path<u32>,
    Query(q): Query<HashMap<String, Vec<String>>>,
    mut state: State<Arc<AppState>>,
) -> Result<Json<User>, (StatusCode, String)>
where
    T: Send,
{
    todo!()
}
`)
		fn := f.Items[0].(*FnItem)
		sig := fn.Sig
		assert.Equal(t, "get_user", sig.Name)
		assert.True(t, sig.Async)
		assert.True(t, fn.Vis.Public)
		require.Len(t, fn.Attrs, 1)
		assert.Equal(t, "get", fn.Attrs[0].Name())
		arg, ok := fn.Attrs[0].StringArg()
		assert.True(t, ok)
		assert.Equal(t, "/users/{id}", arg)

		require.Len(t, sig.Inputs, 3)
		path := sig.Inputs[0].Type.(*PathType)
		assert.Equal(t, "Path", path.Path.LastName())
		require.Len(t, path.Path.Last().Args, 1)
		assert.Equal(t, "u32", path.Path.Last().Args[0].(*PathType).Path.LastName())

		query := sig.Inputs[1].Type.(*PathType)
		hm := query.Path.Last().Args[0].(*PathType)
		assert.Equal(t, "HashMap", hm.Path.LastName())
		require.Len(t, hm.Path.Last().Args, 2)
		assert.Equal(t, "mut state", patText(sig.Inputs[2].Pat))

		out := sig.Output.(*PathType)
		assert.Equal(t, "Result", out.Path.LastName())
		require.Len(t, out.Path.Last().Args, 2)
		assert.IsType(t, &TupleType{}, out.Path.Last().Args[1])
	})

	t.Run("should parse receivers", func(t *testing.T) {
		f := mustParse(t, `
impl Service {
    pub fn a(&self) {}
    fn b(&'a mut self, x: u8) {}
    fn c(self: Box<Self>) {}
}
`)
		impl := f.Items[0].(*ImplItem)
		assert.Nil(t, impl.Trait)
		require.Len(t, impl.Items, 3)
		a := impl.Items[0].(*FnItem).Sig
		require.Len(t, a.Inputs, 1)
		assert.True(t, a.Inputs[0].Receiver)
		b := impl.Items[1].(*FnItem).Sig
		require.Len(t, b.Inputs, 2)
		assert.True(t, b.Inputs[0].Receiver)
		assert.False(t, b.Inputs[1].Receiver)
		c := impl.Items[2].(*FnItem).Sig
		assert.True(t, c.Inputs[0].Receiver)
		assert.NotNil(t, c.Inputs[0].Type)
	})

	t.Run("should parse structs and enums with attributes", func(t *testing.T) {
		f := mustParse(t, `
#[derive(Serialize, Deserialize)]
#[serde(rename_all = "camelCase")]
pub struct User {
    pub id: u64,
    #[serde(rename = "userName")]
    pub(crate) name: String,
    tags: Option<Vec<String>>,
}

pub struct Wrapper(pub u32, String);
struct Unit;

enum Role {
    Admin,
    #[serde(rename = "guest")]
    Guest = 2,
    Custom { name: String },
    Other(u8),
}
`)
		require.Len(t, f.Items, 4)
		user := f.Items[0].(*StructItem)
		assert.Equal(t, NamedFields, user.Kind)
		require.Len(t, user.Attrs, 2)
		require.Len(t, user.Fields, 3)
		assert.Equal(t, "name", user.Fields[1].Name)
		require.Len(t, user.Fields[1].Attrs, 1)

		wrapper := f.Items[1].(*StructItem)
		assert.Equal(t, TupleFields, wrapper.Kind)
		assert.Len(t, wrapper.Fields, 2)
		assert.Equal(t, UnitFields, f.Items[2].(*StructItem).Kind)

		role := f.Items[3].(*EnumItem)
		require.Len(t, role.Variants, 4)
		assert.Equal(t, "Guest", role.Variants[1].Name)
		assert.NotNil(t, role.Variants[1].Discriminant)
		assert.Equal(t, NamedFields, role.Variants[2].Kind)
		assert.Equal(t, TupleFields, role.Variants[3].Kind)
	})

	t.Run("should parse modules, traits, consts and macros", func(t *testing.T) {
		f := mustParse(t, `
#![allow(dead_code)]
mod external;
pub mod api {
    use axum::Router;
    pub fn routes() -> Router { Router::new() }
}
trait Repo: Send + Sync {
    type Item;
    const LIMIT: usize;
    fn find(&self, id: u64) -> Option<Self::Item>;
    fn all(&self) -> Vec<Self::Item> { Vec::new() }
}
impl<T> Repo for Memory<T> where T: Clone {
    type Item = T;
    const LIMIT: usize = 10;
    fn find(&self, id: u64) -> Option<T> { None }
}
const MAX: u32 = 1 << 4;
static NAME: &str = "x";
type Db = Arc<Mutex<HashMap<u64, User>>>;
macro_rules! square { ($x:expr) => { $x * $x }; }
lazy_static! { static ref X: u8 = 1; }
extern crate serde as sd;
`)
		require.Len(t, f.Attrs, 1)
		assert.True(t, f.Attrs[0].Inner)
		require.Len(t, f.Items, 10)

		ext := f.Items[0].(*ModItem)
		assert.False(t, ext.Inline)
		api := f.Items[1].(*ModItem)
		assert.True(t, api.Inline)
		assert.Len(t, api.Items, 2)

		tr := f.Items[2].(*TraitItem)
		assert.Len(t, tr.Items, 4)
		assert.Nil(t, tr.Items[2].(*FnItem).Body)

		impl := f.Items[3].(*ImplItem)
		require.NotNil(t, impl.Trait)
		assert.Equal(t, "Repo", impl.Trait.LastName())
		assert.Equal(t, "Memory", impl.SelfType.(*PathType).Path.LastName())

		assert.False(t, f.Items[4].(*ConstItem).Static)
		assert.True(t, f.Items[5].(*ConstItem).Static)
		assert.Equal(t, "Db", f.Items[6].(*TypeAliasItem).Name)
		assert.Equal(t, "square", f.Items[7].(*MacroItem).Name)
		assert.Equal(t, "lazy_static", f.Items[8].(*MacroItem).Path.String())
		assert.Equal(t, "sd", f.Items[9].(*ExternCrateItem).Rename)
	})

	t.Run("should fail the file on malformed items", func(t *testing.T) {
		_, err := ParseFile("bad.rs", []byte("struct {}\n"))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "bad.rs:1:8")
	})
}

func patText(p Pat) string {
	s := ""
	for i, t := range p.Tokens {
		if i > 0 {
			s += " "
		}
		s += t.String()
	}
	return s
}

func TestParseTypes(t *testing.T) {
	cases := []struct {
		name string
		src  string
		check func(t *testing.T, ty Type)
	}{
		{"reference", "&'a mut str", func(t *testing.T, ty Type) {
			ref := ty.(*RefType)
			assert.Equal(t, "'a", ref.Lifetime)
			assert.True(t, ref.Mut)
			assert.Equal(t, "str", ref.Elem.(*PathType).Path.LastName())
		}},
		{"nested generics closed by >>", "Vec<Option<u8>>", func(t *testing.T, ty Type) {
			vec := ty.(*PathType)
			opt := vec.Path.Last().Args[0].(*PathType)
			assert.Equal(t, "Option", opt.Path.LastName())
		}},
		{"unit", "()", func(t *testing.T, ty Type) {
			assert.Empty(t, ty.(*TupleType).Elems)
		}},
		{"slice and array", "([u8], [i32; 4])", func(t *testing.T, ty Type) {
			tup := ty.(*TupleType)
			assert.IsType(t, &SliceType{}, tup.Elems[0])
			assert.IsType(t, &ArrayType{}, tup.Elems[1])
		}},
		{"impl trait with bindings", "impl IntoResponse + Send + 'static", func(t *testing.T, ty Type) {
			it := ty.(*ImplTraitType)
			require.Len(t, it.Bounds, 2)
			assert.Equal(t, "IntoResponse", it.Bounds[0].LastName())
		}},
		{"dyn trait", "Box<dyn Fn(u8) -> String + Send>", func(t *testing.T, ty Type) {
			box := ty.(*PathType)
			dyn := box.Path.Last().Args[0].(*DynTraitType)
			assert.Equal(t, "Fn", dyn.Bounds[0].LastName())
		}},
		{"qualified path", "<T as Iterator>::Item", func(t *testing.T, ty Type) {
			pt := ty.(*PathType)
			assert.NotNil(t, pt.QSelf)
			assert.Equal(t, "Item", pt.Path.LastName())
		}},
		{"fn pointer", "fn(&str) -> bool", func(t *testing.T, ty Type) {
			fp := ty.(*FnPtrType)
			assert.Len(t, fp.Inputs, 1)
			assert.NotNil(t, fp.Output)
		}},
		{"associated binding skipped", "Pin<Box<dyn Future<Output = ()> + Send>>", func(t *testing.T, ty Type) {
			assert.Equal(t, "Pin", ty.(*PathType).Path.LastName())
		}},
	}

	for _, tc := range cases {
		t.Run("should parse "+tc.name, func(t *testing.T) {
			f := mustParse(t, "type X = "+tc.src+";")
			tc.check(t, f.Items[0].(*TypeAliasItem).Type)
		})
	}
}

func TestParseExpressions(t *testing.T) {
	t.Run("should parse a router chain", func(t *testing.T) {
		x := parseExprSrc(t, `Router::new().route("/users/:id", get(get_user).post(update)).nest("/api", api::routes()).with_state(state)`)
		ws := x.(*MethodCallExpr)
		assert.Equal(t, "with_state", ws.Method)
		nest := ws.Receiver.(*MethodCallExpr)
		assert.Equal(t, "nest", nest.Method)
		require.Len(t, nest.Args, 2)
		route := nest.Receiver.(*MethodCallExpr)
		assert.Equal(t, "route", route.Method)
		lit, ok := route.Args[0].(*LitExpr).StringValue()
		assert.True(t, ok)
		assert.Equal(t, "/users/:id", lit)
		post := route.Args[1].(*MethodCallExpr)
		assert.Equal(t, "post", post.Method)
		get := post.Receiver.(*CallExpr)
		assert.Equal(t, "get", get.Func.(*PathExpr).Path.String())
		newCall := route.Receiver.(*CallExpr)
		assert.Equal(t, "Router::new", newCall.Func.(*PathExpr).Path.String())
	})

	t.Run("should respect operator precedence", func(t *testing.T) {
		x := parseExprSrc(t, `a + b * c == d && !e`)
		and := x.(*BinaryExpr)
		assert.Equal(t, "&&", and.Op)
		eq := and.X.(*BinaryExpr)
		assert.Equal(t, "==", eq.Op)
		plus := eq.X.(*BinaryExpr)
		assert.Equal(t, "+", plus.Op)
		assert.Equal(t, "*", plus.Y.(*BinaryExpr).Op)
		assert.Equal(t, "!", and.Y.(*UnaryExpr).Op)
	})

	t.Run("should parse assignment, ranges and casts", func(t *testing.T) {
		x := parseExprSrc(t, `total += (a as u64)..=b`)
		assign := x.(*BinaryExpr)
		assert.Equal(t, "+=", assign.Op)
		r := assign.Y.(*RangeExpr)
		assert.True(t, r.Inclusive)
		assert.IsType(t, &CastExpr{}, r.From.(*ParenExpr).X)
	})

	t.Run("should parse closures and async blocks", func(t *testing.T) {
		x := parseExprSrc(t, `tokio::spawn(async move { serve(|req: Request, _| async { handle(req).await }).await? })`)
		call := x.(*CallExpr)
		block := call.Args[0].(*BlockExpr)
		assert.True(t, block.Async)
		assert.True(t, block.Move)
		es := block.Block.Stmts[0].(*ExprStmt)
		try := es.X.(*TryExpr)
		await := try.X.(*AwaitExpr)
		serve := await.X.(*CallExpr)
		closure := serve.Args[0].(*ClosureExpr)
		require.Len(t, closure.Params, 2)
		assert.NotNil(t, closure.Params[0].Type)
		assert.IsType(t, &BlockExpr{}, closure.Body)
	})

	t.Run("should parse struct literals outside condition heads only", func(t *testing.T) {
		stmts := firstFnBody(t, `fn f() {
    let u = User { id: 1, name, ..Default::default() };
    match u { User { id, .. } => {} }
    if x {} else if y { z } else { w }
}`)
		require.Len(t, stmts, 3)
		let := stmts[0].(*LetStmt)
		assert.Equal(t, "u", let.Pat.Ident())
		st := let.Init.(*StructExpr)
		require.Len(t, st.Fields, 2)
		assert.Equal(t, "name", st.Fields[1].Name)
		assert.NotNil(t, st.Rest)

		m := stmts[1].(*ExprStmt).X.(*MatchExpr)
		assert.IsType(t, &PathExpr{}, m.X)
		assert.Len(t, m.Arms, 1)

		chain := stmts[2].(*ExprStmt).X.(*IfExpr)
		assert.IsType(t, &IfExpr{}, chain.Else)
	})

	t.Run("should parse match arms with and without commas", func(t *testing.T) {
		x := parseExprSrc(t, `match r {
    Ok(v) if v > 0 => { ok(v) }
    Ok(_) => zero(),
    Err(e) => return Err(e.into()),
}`)
		m := x.(*MatchExpr)
		require.Len(t, m.Arms, 3)
		assert.NotNil(t, m.Arms[0].Guard)
		assert.IsType(t, &BlockExpr{}, m.Arms[0].Body)
		assert.IsType(t, &ReturnExpr{}, m.Arms[2].Body)
	})

	t.Run("should parse loops, labels and lets in conditions", func(t *testing.T) {
		stmts := firstFnBody(t, `fn f() {
    'outer: for (i, x) in items.iter().enumerate() { break 'outer; }
    while let Some(x) = stack.pop() { continue; }
    loop { break 5; }
    if let Some(u) = find() && u.active {}
}`)
		require.Len(t, stmts, 4)
		fe := stmts[0].(*ExprStmt).X.(*ForExpr)
		assert.Equal(t, "'outer", fe.Label)
		we := stmts[1].(*ExprStmt).X.(*WhileExpr)
		assert.IsType(t, &LetExpr{}, we.Cond)
		assert.IsType(t, &LoopExpr{}, stmts[2].(*ExprStmt).X)
		cond := stmts[3].(*ExprStmt).X.(*IfExpr).Cond.(*BinaryExpr)
		assert.Equal(t, "&&", cond.Op)
		assert.IsType(t, &LetExpr{}, cond.X)
	})

	t.Run("should parse turbofish, tuple fields and indexing", func(t *testing.T) {
		x := parseExprSrc(t, `pair.0.1.iter().collect::<Vec<_>>()[0]`)
		idx := x.(*IndexExpr)
		collect := idx.X.(*MethodCallExpr)
		assert.Equal(t, "collect", collect.Method)
		require.Len(t, collect.Turbofish, 1)
		iter := collect.Receiver.(*MethodCallExpr)
		f1 := iter.Receiver.(*FieldExpr)
		assert.Equal(t, "1", f1.Name)
		assert.Equal(t, "0", f1.X.(*FieldExpr).Name)
	})

	t.Run("should parse macro arguments when they are expressions", func(t *testing.T) {
		x := parseExprSrc(t, `vec![get(a), post(b)]`)
		m := x.(*MacroExpr)
		assert.Equal(t, "vec", m.Path.String())
		assert.Equal(t, Bracket, m.Delim)
		assert.Len(t, m.Args, 2)

		x = parseExprSrc(t, `json!({"id": 1})`)
		assert.Nil(t, x.(*MacroExpr).Args)
	})
}

func TestParseStatements(t *testing.T) {
	t.Run("should parse let with type, init and else", func(t *testing.T) {
		stmts := firstFnBody(t, `fn f() {
    let app: Router = Router::new();
    let Some(x) = opt else { return; };
    let mut n;
}`)
		require.Len(t, stmts, 3)
		let := stmts[0].(*LetStmt)
		assert.Equal(t, "app", let.Pat.Ident())
		assert.NotNil(t, let.Type)
		assert.NotNil(t, let.Init)
		assert.NotNil(t, stmts[1].(*LetStmt).Else)
		assert.Equal(t, "n", stmts[2].(*LetStmt).Pat.Ident())
	})

	t.Run("should parse nested items and trailing expressions", func(t *testing.T) {
		stmts := firstFnBody(t, `fn f() -> Router {
    use axum::routing::get;
    async fn inner() {}
    println!("x");
    Router::new()
}`)
		require.Len(t, stmts, 4)
		assert.IsType(t, &ItemStmt{}, stmts[0])
		assert.IsType(t, &ItemStmt{}, stmts[1])
		assert.True(t, stmts[2].(*ExprStmt).Semi)
		assert.False(t, stmts[3].(*ExprStmt).Semi)
	})

	t.Run("should recover from statements it cannot parse", func(t *testing.T) {
		f := mustParse(t, `fn f() {
    let a = 1;
    weird $ syntax here;
    let b = 2;
}`)
		stmts := f.Items[0].(*FnItem).Body.Stmts
		require.Len(t, stmts, 3)
		assert.IsType(t, &BadExpr{}, stmts[1].(*ExprStmt).X)
		assert.Equal(t, "b", stmts[2].(*LetStmt).Pat.Ident())
		require.Len(t, f.Recovered, 1)
		assert.Equal(t, 3, f.Recovered[0].Pos.Line)
	})
}
