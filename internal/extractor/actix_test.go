package extractor

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Zachacious/rs-respec/internal/model"
)

func TestActixRoutes(t *testing.T) {
	t.Run("should read a handler without parameters", func(t *testing.T) {
		routes := extract(t, model.FrameworkActix, `
use actix_web::{get, HttpResponse, Responder};

#[get("/health")]
async fn health() -> impl Responder {
    HttpResponse::Ok()
}
`)
		require.Len(t, routes, 1)
		r := routes[0]
		assert.Equal(t, "/health", r.Path)
		assert.Equal(t, model.MethodGet, r.Method)
		assert.Equal(t, "health", r.HandlerName)
		assert.Empty(t, r.Parameters)
		assert.Nil(t, r.RequestBody)
		assert.Nil(t, r.ResponseType)
	})

	t.Run("should bind web extractors", func(t *testing.T) {
		routes := extract(t, model.FrameworkActix, `
#[actix_web::post("/users/{id}/posts/{slug:[a-z-]+}")]
async fn create_post(
    path: web::Path<(u32, String)>,
    body: web::Json<NewPost>,
    filter: web::Query<Filter>,
    data: web::Data<AppState>,
) -> HttpResponse {
    HttpResponse::Created().finish()
}
`)
		require.Len(t, routes, 1)
		r := routes[0]
		assert.Equal(t, model.MethodPost, r.Method)
		assert.Equal(t, "/users/{id}/posts/{slug:[a-z-]+}", r.Path)

		var names []string
		for _, p := range r.Parameters {
			names = append(names, string(p.Location)+":"+p.Name)
		}
		assert.Equal(t, []string{"path:id", "path:slug", "path:path_params", "query:query_params"}, names)
		require.NotNil(t, r.RequestBody)
		assert.Equal(t, "NewPost", r.RequestBody.Name)
		assert.Equal(t, "HttpResponse", r.ResponseType.Name)
	})

	t.Run("should keep duplicate path parameters", func(t *testing.T) {
		routes := extract(t, model.FrameworkActix, `
#[get("/users/{id}")]
async fn get_user(id: web::Path<u32>) -> web::Json<User> { todo!() }
`)
		require.Len(t, routes, 1)
		assert.Equal(t, []model.Parameter{
			pathParam("id"),
			{Name: "path_params", Location: model.LocationPath, Type: model.NewType("u32"), Required: true},
		}, routes[0].Parameters)
		assert.Equal(t, "User", routes[0].ResponseType.Name)
	})

	t.Run("should emit one route per method of a route attribute", func(t *testing.T) {
		routes := extract(t, model.FrameworkActix, `
#[route("/items", method = "GET", method = "POST")]
async fn items() -> HttpResponse { todo!() }

#[put("/items/{id}")]
#[delete("/items/{id}")]
async fn item() -> HttpResponse { todo!() }
`)
		assert.Equal(t, []string{
			"GET /items items",
			"POST /items items",
			"PUT /items/{id} item",
			"DELETE /items/{id} item",
		}, endpoints(routes))
	})

	t.Run("should prefix handlers registered on scopes", func(t *testing.T) {
		routes := extract(t, model.FrameworkActix, `
#[get("/users")]
async fn list_users() -> HttpResponse { todo!() }

#[get("/users/{id}")]
async fn get_user() -> HttpResponse { todo!() }

#[get("/ping")]
async fn ping() -> HttpResponse { todo!() }
`, `
pub fn config(cfg: &mut web::ServiceConfig) {
    cfg.service(
        web::scope("/api")
            .service(list_users)
            .service(web::scope("/v2").service((get_user, list_users)))
            .route("/health", web::get().to(health)),
    );
}

async fn health() -> HttpResponse { todo!() }

#[actix_web::main]
async fn main() -> std::io::Result<()> {
    HttpServer::new(|| App::new().service(ping).configure(config))
        .bind(("127.0.0.1", 8080))?
        .run()
        .await
}
`)
		assert.Equal(t, []string{
			"GET /api/users list_users",
			"GET /api/v2/users/{id} get_user",
			"GET /ping ping",
			"GET /api/health health",
			"GET /api/v2/users list_users",
		}, endpoints(routes))
		assert.Equal(t, []model.Parameter{pathParam("id")}, routes[1].Parameters)
	})

	t.Run("should read builder routes and resources", func(t *testing.T) {
		routes := extract(t, model.FrameworkActix, `
fn main() {
    let app = App::new()
        .route("/hey", web::get().to(manual_hello))
        .service(
            web::resource("/items/{id}")
                .route(web::get().to(get_item))
                .route(web::delete().guard(guard::Header("x-admin", "1")).to(delete_item)),
        )
        .route("/raw", web::method(Method::GET).to(raw));
}
async fn manual_hello() -> impl Responder { "hey" }
async fn get_item(id: web::Path<u64>) -> web::Json<Item> { todo!() }
async fn delete_item() -> HttpResponse { todo!() }
`)
		assert.Equal(t, []string{
			"GET /hey manual_hello",
			"GET /items/{id} get_item",
			"DELETE /items/{id} delete_item",
		}, endpoints(routes))
		assert.Equal(t, "Item", routes[1].ResponseType.Name)
		assert.Len(t, routes[1].Parameters, 2)
	})

	t.Run("should apply the lexical scope prefix", func(t *testing.T) {
		routes := extract(t, model.FrameworkActix, `
fn build(app: App) {
    app.scope("/v1", || {
        #[get("/items")]
        async fn items() -> HttpResponse { todo!() }
    });
}
`)
		assert.Equal(t, []string{"GET /v1/items items"}, endpoints(routes))
	})

	t.Run("should log and keep routes with unknown handlers", func(t *testing.T) {
		routes := extract(t, model.FrameworkActix, `
fn main() {
    App::new().route("/gone", web::post().to(handlers::gone));
}
`)
		assert.Equal(t, []string{"POST /gone gone"}, endpoints(routes))
		assert.Nil(t, routes[0].ResponseType)
	})
}
