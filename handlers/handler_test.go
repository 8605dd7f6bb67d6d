package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/krishkalaria12/linegrade/auth"
	"github.com/krishkalaria12/linegrade/config"
	"github.com/krishkalaria12/linegrade/database"
	handler "github.com/krishkalaria12/linegrade/handlers"
	"github.com/krishkalaria12/linegrade/middleware"
	"github.com/krishkalaria12/linegrade/models"
	"github.com/krishkalaria12/linegrade/repository"
	"github.com/krishkalaria12/linegrade/router"
	"github.com/krishkalaria12/linegrade/storage"
)

type testEnv struct {
	app       *fiber.App
	store     *repository.Store
	auth      *auth.Service
	mediaRoot string
}

type envelope struct {
	Status  string          `json:"status"`
	Code    string          `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
	Details map[string]any  `json:"details"`
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	dir := t.TempDir()
	db, err := database.OpenSQLite(filepath.Join(dir, "handler_test.db"))
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { _ = database.Close(db) })
	if err := database.Migrate(db); err != nil {
		t.Fatalf("run migrations: %v", err)
	}

	mediaRoot := filepath.Join(dir, "media")
	blobs, err := storage.NewLocalStore(mediaRoot, "http://localhost:3000/media")
	if err != nil {
		t.Fatalf("local store: %v", err)
	}

	store := repository.New(db)
	authService := auth.NewService("handler-test-secret", "http://localhost:3000", store)

	app := router.NewApp()
	router.SetupRoutes(app, handler.New(store, authService, blobs), router.Options{
		Auth:        authService,
		CameraToken: config.DefaultCameraToken,
		MediaRoot:   mediaRoot,
	})

	return &testEnv{app: app, store: store, auth: authService, mediaRoot: mediaRoot}
}

// login registers a user and returns a bearer token for it.
func (e *testEnv) login(t *testing.T, email string) string {
	t.Helper()
	user, err := e.auth.Register(context.Background(), auth.RegisterInput{Email: email, Password: "correct-horse"})
	if err != nil {
		t.Fatalf("register %s: %v", email, err)
	}
	tok, err := e.auth.IssueToken(user)
	if err != nil {
		t.Fatalf("issue token: %v", err)
	}
	return tok
}

func (e *testEnv) do(t *testing.T, req *http.Request) (int, envelope) {
	t.Helper()
	resp, err := e.app.Test(req, -1)
	if err != nil {
		t.Fatalf("%s %s: %v", req.Method, req.URL.Path, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	var env envelope
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &env); err != nil {
			t.Fatalf("%s %s: decode %q: %v", req.Method, req.URL.Path, raw, err)
		}
	}
	return resp.StatusCode, env
}

func (e *testEnv) doJSON(t *testing.T, method, path, token string, body any) (int, envelope) {
	t.Helper()
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal: %v", err)
		}
		reader = bytes.NewReader(payload)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	return e.do(t, req)
}

func multipartImage(t *testing.T, fields map[string]string, filename string, content []byte) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for k, v := range fields {
		if err := w.WriteField(k, v); err != nil {
			t.Fatalf("write field: %v", err)
		}
	}
	if filename != "" {
		part, err := w.CreateFormFile("image", filename)
		if err != nil {
			t.Fatalf("create file part: %v", err)
		}
		if _, err := part.Write(content); err != nil {
			t.Fatalf("write file part: %v", err)
		}
	}
	if err := w.Close(); err != nil {
		t.Fatalf("close multipart: %v", err)
	}
	return &buf, w.FormDataContentType()
}

func (e *testEnv) postImage(t *testing.T, token string, fields map[string]string, filename string) (int, envelope) {
	t.Helper()
	body, contentType := multipartImage(t, fields, filename, []byte("fake-jpeg"))
	req := httptest.NewRequest("POST", "/api/image", body)
	req.Header.Set("Content-Type", contentType)
	if token != "" {
		req.Header.Set(middleware.CameraTokenHeader, token)
	}
	return e.do(t, req)
}

func decodeObject(t *testing.T, raw json.RawMessage) map[string]json.RawMessage {
	t.Helper()
	var obj map[string]json.RawMessage
	if err := json.Unmarshal(raw, &obj); err != nil {
		t.Fatalf("decode object %s: %v", raw, err)
	}
	return obj
}

func decodeList(t *testing.T, raw json.RawMessage) []map[string]json.RawMessage {
	t.Helper()
	var list []map[string]json.RawMessage
	if err := json.Unmarshal(raw, &list); err != nil {
		t.Fatalf("decode list %s: %v", raw, err)
	}
	return list
}

func assertKeys(t *testing.T, what string, obj map[string]json.RawMessage, want ...string) {
	t.Helper()
	got := make([]string, 0, len(obj))
	for k := range obj {
		got = append(got, k)
	}
	sort.Strings(got)
	sort.Strings(want)
	if strings.Join(got, ",") != strings.Join(want, ",") {
		t.Fatalf("%s keys = %v, want %v", what, got, want)
	}
}

func (e *testEnv) createCamera(t *testing.T, token, ip, line string) map[string]json.RawMessage {
	t.Helper()
	status, env := e.doJSON(t, "POST", "/api/camera", token, map[string]any{
		"production_line": map[string]string{"name": line, "product": "valves"},
		"IP":              ip,
		"username":        "admin",
		"password":        "secret",
	})
	if status != fiber.StatusCreated {
		t.Fatalf("create camera: status %d %+v", status, env)
	}
	return decodeObject(t, env.Data)
}

func imageFields(index, ip, grade string) map[string]string {
	return map[string]string{
		"item.index":      index,
		"camera.IP":       ip,
		"camera.username": "admin",
		"camera.password": "secret",
		"grade":           grade,
		"capture_time":    "2026-03-01T08:15:00Z",
	}
}

func TestUserEndpointsRequireToken(t *testing.T) {
	env := newTestEnv(t)

	for _, path := range []string{
		"/api/production_line",
		"/api/camera",
		"/api/item",
		"/api/image",
		"/api/image/1",
		"/api/user/me",
	} {
		status, body := env.doJSON(t, "GET", path, "", nil)
		if status != fiber.StatusUnauthorized || body.Code != "AUTHENTICATION_ERROR" {
			t.Errorf("GET %s = %d %q, want 401", path, status, body.Code)
		}
	}
}

func TestProductionLineGetOrCreate(t *testing.T) {
	env := newTestEnv(t)
	alice := env.login(t, "alice@example.com")
	bob := env.login(t, "bob@example.com")

	line := map[string]string{"name": "Assembly", "product": "pumps"}

	status, first := env.doJSON(t, "POST", "/api/production_line", alice, line)
	if status != fiber.StatusCreated {
		t.Fatalf("first create: %d %+v", status, first)
	}
	status, second := env.doJSON(t, "POST", "/api/production_line", alice, line)
	if status != fiber.StatusOK {
		t.Fatalf("second create: %d %+v", status, second)
	}
	a, b := decodeObject(t, first.Data), decodeObject(t, second.Data)
	assertKeys(t, "production line", a, "id", "name", "product")
	if string(a["id"]) != string(b["id"]) {
		t.Fatalf("ids differ: %s vs %s", a["id"], b["id"])
	}

	status, other := env.doJSON(t, "POST", "/api/production_line", bob, line)
	if status != fiber.StatusCreated {
		t.Fatalf("other owner create: %d", status)
	}
	if string(decodeObject(t, other.Data)["id"]) == string(a["id"]) {
		t.Fatal("different owners must get different lines")
	}

	status, list := env.doJSON(t, "GET", "/api/production_line", alice, nil)
	if status != fiber.StatusOK || len(decodeList(t, list.Data)) != 1 {
		t.Fatalf("list: %d %s", status, list.Data)
	}

	status, missing := env.doJSON(t, "POST", "/api/production_line", alice, map[string]string{"name": "No product"})
	if status != fiber.StatusBadRequest || missing.Details["product"] == nil {
		t.Fatalf("missing product: %d %+v", status, missing)
	}
}

func TestCameraProjections(t *testing.T) {
	env := newTestEnv(t)
	token := env.login(t, "alice@example.com")

	detail := env.createCamera(t, token, "192.168.1.20", "Line 1")
	assertKeys(t, "camera detail", detail, "id", "production_line", "IP", "username", "password")
	assertKeys(t, "camera line", decodeObject(t, detail["production_line"]), "id", "name", "product")

	status, list := env.doJSON(t, "GET", "/api/camera", token, nil)
	if status != fiber.StatusOK {
		t.Fatalf("list cameras: %d", status)
	}
	cameras := decodeList(t, list.Data)
	if len(cameras) != 1 {
		t.Fatalf("got %d cameras", len(cameras))
	}
	assertKeys(t, "camera summary", cameras[0], "id", "production_line", "IP")

	status, dup := env.doJSON(t, "POST", "/api/camera", token, map[string]any{
		"production_line": map[string]string{"name": "Line 1", "product": "valves"},
		"IP":              "192.168.1.20",
		"username":        "admin",
		"password":        "secret",
	})
	if status != fiber.StatusConflict || dup.Code != "CONFLICT" {
		t.Fatalf("duplicate IP: %d %+v", status, dup)
	}

	status, patched := env.doJSON(t, "PATCH", "/api/camera/"+string(detail["id"]), token, map[string]string{"username": "operator"})
	if status != fiber.StatusOK {
		t.Fatalf("patch camera: %d %+v", status, patched)
	}
	var got struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}
	if err := json.Unmarshal(patched.Data, &got); err != nil || got.Username != "operator" || got.Password != "secret" {
		t.Fatalf("patched camera = %+v err=%v", got, err)
	}
}

func TestImageIngestionMultipart(t *testing.T) {
	env := newTestEnv(t)
	token := env.login(t, "alice@example.com")
	env.createCamera(t, token, "10.1.0.5", "Line 1")

	status, created := env.postImage(t, config.DefaultCameraToken, imageFields("42", "10.1.0.5", "2"), "front.JPG")
	if status != fiber.StatusCreated {
		t.Fatalf("ingest: %d %+v", status, created)
	}

	detail := decodeObject(t, created.Data)
	assertKeys(t, "image detail", detail, "id", "item", "grade", "capture_time", "camera", "created_at", "image")
	assertKeys(t, "image item", decodeObject(t, detail["item"]), "id", "index")
	assertKeys(t, "image camera", decodeObject(t, detail["camera"]), "id", "production_line", "IP")

	var path string
	if err := json.Unmarshal(detail["image"], &path); err != nil {
		t.Fatalf("image path: %v", err)
	}
	if !strings.HasPrefix(path, storage.ImageNamespace+"/") || !strings.HasSuffix(path, ".jpg") {
		t.Fatalf("unexpected path %q", path)
	}
	if data, err := os.ReadFile(filepath.Join(env.mediaRoot, filepath.FromSlash(path))); err != nil || string(data) != "fake-jpeg" {
		t.Fatalf("stored file = %q err=%v", data, err)
	}

	status, list := env.doJSON(t, "GET", "/api/image", token, nil)
	if status != fiber.StatusOK {
		t.Fatalf("list images: %d", status)
	}
	images := decodeList(t, list.Data)
	if len(images) != 1 {
		t.Fatalf("got %d images", len(images))
	}
	assertKeys(t, "image summary", images[0], "id", "item", "grade", "capture_time")

	status, dup := env.postImage(t, config.DefaultCameraToken, imageFields("42", "10.1.0.5", "1"), "")
	if status != fiber.StatusConflict {
		t.Fatalf("duplicate pair: %d %+v", status, dup)
	}

	status, _ = env.doJSON(t, "DELETE", "/api/image/"+string(detail["id"]), token, nil)
	if status != fiber.StatusOK {
		t.Fatalf("delete image: %d", status)
	}
	if _, err := os.Stat(filepath.Join(env.mediaRoot, filepath.FromSlash(path))); !os.IsNotExist(err) {
		t.Fatalf("stored file still present: %v", err)
	}
}

func TestImageIngestionJSON(t *testing.T) {
	env := newTestEnv(t)
	token := env.login(t, "alice@example.com")
	env.createCamera(t, token, "10.1.0.6", "Line 1")

	req := httptest.NewRequest("POST", "/api/image", strings.NewReader(
		`{"item":{"index":7},"camera":{"IP":"10.1.0.6"},"grade":0,"capture_time":"2026-03-01T08:15:00Z"}`))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(middleware.CameraTokenHeader, config.DefaultCameraToken)

	status, body := env.do(t, req)
	if status != fiber.StatusCreated {
		t.Fatalf("ingest json: %d %+v", status, body)
	}
	detail := decodeObject(t, body.Data)
	if string(detail["image"]) != "null" || string(detail["grade"]) != "0" {
		t.Fatalf("unexpected detail %v", detail)
	}
}

func TestImageIngestionRejections(t *testing.T) {
	env := newTestEnv(t)
	token := env.login(t, "alice@example.com")
	env.createCamera(t, token, "10.1.0.7", "Line 1")

	t.Run("missing token", func(t *testing.T) {
		status, body := env.postImage(t, "", imageFields("1", "10.1.0.7", "1"), "a.jpg")
		if status != fiber.StatusUnauthorized || body.Code != "AUTHENTICATION_ERROR" {
			t.Fatalf("got %d %+v", status, body)
		}
	})

	t.Run("user token is not enough", func(t *testing.T) {
		body, contentType := multipartImage(t, imageFields("1", "10.1.0.7", "1"), "", nil)
		req := httptest.NewRequest("POST", "/api/image", body)
		req.Header.Set("Content-Type", contentType)
		req.Header.Set("Authorization", "Bearer "+token)
		if status, _ := env.do(t, req); status != fiber.StatusUnauthorized {
			t.Fatalf("got %d, want 401", status)
		}
	})

	t.Run("grade out of range", func(t *testing.T) {
		status, body := env.postImage(t, config.DefaultCameraToken, imageFields("1", "10.1.0.7", "4"), "")
		if status != fiber.StatusBadRequest || body.Details["grade"] == nil {
			t.Fatalf("got %d %+v", status, body)
		}
	})

	t.Run("bad capture time", func(t *testing.T) {
		fields := imageFields("1", "10.1.0.7", "1")
		fields["capture_time"] = "yesterday"
		status, body := env.postImage(t, config.DefaultCameraToken, fields, "")
		if status != fiber.StatusBadRequest || body.Details["capture_time"] == nil {
			t.Fatalf("got %d %+v", status, body)
		}
	})

	t.Run("unknown camera", func(t *testing.T) {
		status, body := env.postImage(t, config.DefaultCameraToken, imageFields("99", "10.9.9.9", "1"), "b.jpg")
		if status != fiber.StatusNotFound || body.Code != "NOT_FOUND" {
			t.Fatalf("got %d %+v", status, body)
		}
	})

	items, err := env.store.CountItems(context.Background())
	if err != nil {
		t.Fatalf("count items: %v", err)
	}
	if items != 0 {
		t.Fatalf("rejected submissions created %d items", items)
	}
}

func TestItemEndpoints(t *testing.T) {
	env := newTestEnv(t)
	token := env.login(t, "alice@example.com")

	status, created := env.doJSON(t, "POST", "/api/item", token, map[string]int{"index": 11})
	if status != fiber.StatusCreated {
		t.Fatalf("create item: %d %+v", status, created)
	}
	item := decodeObject(t, created.Data)
	assertKeys(t, "item", item, "id", "index")

	var id string
	if err := json.Unmarshal(item["id"], &id); err != nil {
		t.Fatalf("item id: %v", err)
	}

	status, _ = env.doJSON(t, "PATCH", "/api/item/"+id, token, map[string]int{"index": 12})
	if status != fiber.StatusOK {
		t.Fatalf("patch item: %d", status)
	}
	got, err := env.store.FindItemByIndex(context.Background(), 12)
	if err != nil || got.ID.String() != id {
		t.Fatalf("item not updated: %+v err=%v", got, err)
	}

	if status, _ := env.doJSON(t, "GET", "/api/item/not-a-uuid", token, nil); status != fiber.StatusNotFound {
		t.Fatalf("bad uuid: %d", status)
	}
	if status, _ := env.doJSON(t, "DELETE", "/api/item/"+id, token, nil); status != fiber.StatusOK {
		t.Fatalf("delete item: %d", status)
	}
	if status, _ := env.doJSON(t, "GET", "/api/item/"+id, token, nil); status != fiber.StatusNotFound {
		t.Fatalf("deleted item still visible: %d", status)
	}
}

func TestLoginAndMe(t *testing.T) {
	env := newTestEnv(t)

	status, _ := env.doJSON(t, "POST", "/api/user", "", map[string]string{
		"email": "carol@example.com", "name": "Carol", "password": "correct-horse",
	})
	if status != fiber.StatusCreated {
		t.Fatalf("register: %d", status)
	}

	status, login := env.doJSON(t, "POST", "/api/auth/login", "", map[string]string{
		"identity": "carol@example.com", "password": "correct-horse",
	})
	if status != fiber.StatusOK {
		t.Fatalf("login: %d %+v", status, login)
	}
	var session struct {
		Token string `json:"token"`
	}
	if err := json.Unmarshal(login.Data, &session); err != nil || session.Token == "" {
		t.Fatalf("login data %s: %v", login.Data, err)
	}

	status, me := env.doJSON(t, "GET", "/api/user/me", session.Token, nil)
	if status != fiber.StatusOK {
		t.Fatalf("me: %d", status)
	}
	var user models.User
	if err := json.Unmarshal(me.Data, &user); err != nil || user.Email != "carol@example.com" {
		t.Fatalf("me = %+v err=%v", user, err)
	}

	status, _ = env.doJSON(t, "POST", "/api/auth/login", "", map[string]string{
		"identity": "carol@example.com", "password": "wrong-horse",
	})
	if status != fiber.StatusUnauthorized {
		t.Fatalf("bad password login: %d", status)
	}
}

func TestHealth(t *testing.T) {
	env := newTestEnv(t)
	if status, body := env.doJSON(t, "GET", "/api/health", "", nil); status != fiber.StatusOK || body.Status != "success" {
		t.Fatalf("health: %d %+v", status, body)
	}
}

func TestItemDeleteCascadesAcrossOwners(t *testing.T) {
	env := newTestEnv(t)
	alice := env.login(t, "alice@example.com")
	bob := env.login(t, "bob@example.com")
	env.createCamera(t, alice, "10.2.0.1", "Line 1")

	status, created := env.postImage(t, config.DefaultCameraToken, imageFields("5", "10.2.0.1", "1"), "side.png")
	if status != fiber.StatusCreated {
		t.Fatalf("ingest: %d %+v", status, created)
	}
	var image struct {
		Item  struct{ ID string } `json:"item"`
		Image string              `json:"image"`
	}
	if err := json.Unmarshal(created.Data, &image); err != nil {
		t.Fatalf("decode image: %v", err)
	}

	if status, _ := env.doJSON(t, "DELETE", "/api/item/"+image.Item.ID, bob, nil); status != fiber.StatusOK {
		t.Fatalf("delete item as another user: %d", status)
	}

	status, list := env.doJSON(t, "GET", "/api/image", alice, nil)
	if status != fiber.StatusOK {
		t.Fatalf("list images: %d", status)
	}
	if images := decodeList(t, list.Data); len(images) != 0 {
		t.Fatalf("owner still sees %d images after item delete", len(images))
	}
	if _, err := os.Stat(filepath.Join(env.mediaRoot, filepath.FromSlash(image.Image))); !os.IsNotExist(err) {
		t.Fatalf("stored file still present: %v", err)
	}
}
