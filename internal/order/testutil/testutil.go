package testutil

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/bitfantasy/joinery/internal/database"
	"github.com/bitfantasy/joinery/internal/middleware"
	"github.com/bitfantasy/joinery/internal/order/entity"
	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const (
	JWTSecret   = "joinery-test-jwt-secret"
	TestUserID  = "test-user-001"
	WebhookAuth = "test-webhook-token"
)

// TestEnv holds test environment resources
type TestEnv struct {
	DB     *gorm.DB
	Router *gin.Engine
	T      *testing.T
}

// SetupTestDB opens a private in-memory sqlite database with the full schema.
// A single connection keeps every statement on the same database.
func SetupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.New().String())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:                                   logger.Default.LogMode(logger.Silent),
		DisableForeignKeyConstraintWhenMigrating: true,
		TranslateError:                           true,
	})
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("Failed to get database instance: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)

	if err := database.Migrate(db); err != nil {
		t.Fatalf("Failed to migrate test database: %v", err)
	}

	t.Cleanup(func() {
		sqlDB.Close()
	})
	return db
}

// SetupRouter creates a gin test router
func SetupRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(gin.Recovery())
	return r
}

// AuthGroup creates an API group with JWT auth middleware for testing
func AuthGroup(r *gin.Engine, path string) *gin.RouterGroup {
	return r.Group(path, middleware.JWTAuth(JWTSecret))
}

// GenerateTestToken creates a valid JWT token for testing
func GenerateTestToken(userID, name string, roles ...string) string {
	if roles == nil {
		roles = []string{}
	}
	now := time.Now()
	claims := jwt.MapClaims{
		"sub":   userID,
		"uid":   userID,
		"name":  name,
		"email": userID + "@test.local",
		"roles": roles,
		"iss":   "joinery",
		"iat":   now.Unix(),
		"exp":   now.Add(24 * time.Hour).Unix(),
		"jti":   fmt.Sprintf("test-jti-%d", now.UnixNano()),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, _ := token.SignedString([]byte(JWTSecret))
	return tokenString
}

// DefaultTestToken returns a token for the default admin test user
func DefaultTestToken() string {
	return GenerateTestToken(TestUserID, "Test Admin", entity.RoleAdmin)
}

// DoRequest executes an HTTP request against the test router
func DoRequest(r *gin.Engine, method, path string, body interface{}, token string) *httptest.ResponseRecorder {
	return DoRequestWithHeaders(r, method, path, body, token, nil)
}

// DoRequestWithHeaders is DoRequest with extra request headers.
func DoRequestWithHeaders(r *gin.Engine, method, path string, body interface{}, token string, headers map[string]string) *httptest.ResponseRecorder {
	var reqBody *bytes.Buffer
	if body != nil {
		jsonBytes, _ := json.Marshal(body)
		reqBody = bytes.NewBuffer(jsonBytes)
	} else {
		reqBody = bytes.NewBuffer(nil)
	}

	req, _ := http.NewRequest(method, path, reqBody)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

// ParseResponse parses the JSON response envelope into a map
func ParseResponse(w *httptest.ResponseRecorder) map[string]interface{} {
	var result map[string]interface{}
	json.Unmarshal(w.Body.Bytes(), &result)
	return result
}

// Data returns the envelope's data object.
func Data(w *httptest.ResponseRecorder) map[string]interface{} {
	data, _ := ParseResponse(w)["data"].(map[string]interface{})
	return data
}

// SeedUser creates an active user with one role
func SeedUser(t *testing.T, db *gorm.DB, id, name, role string) *entity.User {
	t.Helper()
	user := &entity.User{
		ID:        id,
		Name:      name,
		Email:     id + "@test.local",
		Role:      role,
		Status:    "active",
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("Failed to seed user: %v", err)
	}
	return user
}

// SeedStaff creates one design lead, two designers and a production user.
func SeedStaff(t *testing.T, db *gorm.DB) {
	t.Helper()
	SeedUser(t, db, "lead-1", "Design Lead", entity.RoleDesignLead)
	SeedUser(t, db, "designer-1", "Designer One", entity.RoleDesignTeam)
	SeedUser(t, db, "designer-2", "Designer Two", entity.RoleDesignTeam)
	SeedUser(t, db, "prod-1", "Workshop", entity.RoleProduction)
}

// QuoteLine is a seeded quote item.
type QuoteLine struct {
	Code        string
	Description string
	Floor       string
	Room        string
	Quantity    int
	UnitPrice   string
}

// SeedQuote creates a quote in the given status. Totals are derived from lines.
func SeedQuote(t *testing.T, db *gorm.DB, code string, status entity.QuoteStatus, lines ...QuoteLine) *entity.Quote {
	t.Helper()
	quote := &entity.Quote{
		ID:             uuid.New().String(),
		Code:           code,
		ClientName:     "Client " + code,
		Status:         status,
		ApprovalStatus: entity.QuoteApprovalNotRequested,
		CreatedBy:      TestUserID,
	}
	total := decimal.Zero
	for i, l := range lines {
		qty := l.Quantity
		if qty == 0 {
			qty = 1
		}
		item := entity.QuoteItem{
			ID:          uuid.New().String(),
			QuoteID:     quote.ID,
			Code:        l.Code,
			Description: l.Description,
			Floor:       l.Floor,
			Room:        l.Room,
			Quantity:    qty,
			UnitPrice:   decimal.RequireFromString(l.UnitPrice),
			SortOrder:   i + 1,
		}
		item.LineTotal = item.CalcLineTotal()
		total = total.Add(item.LineTotal)
		quote.Items = append(quote.Items, item)
	}
	quote.Subtotal = total
	quote.Total = total
	if err := db.Create(quote).Error; err != nil {
		t.Fatalf("Failed to seed quote: %v", err)
	}
	return quote
}

// SeedProject creates a project with one item per status.
func SeedProject(t *testing.T, db *gorm.DB, status entity.ProjectStatus, itemStatuses ...entity.ItemStatus) (*entity.Project, []entity.ProjectItem) {
	t.Helper()
	project := &entity.Project{
		ID:            uuid.New().String(),
		Code:          "PRJ-" + uuid.New().String()[:8],
		Name:          "Seeded project",
		Status:        status,
		ContractValue: decimal.NewFromInt(1000),
		QuoteID:       uuid.New().String(),
	}
	if err := db.Omit("Items").Create(project).Error; err != nil {
		t.Fatalf("Failed to seed project: %v", err)
	}
	items := make([]entity.ProjectItem, 0, len(itemStatuses))
	for i, st := range itemStatuses {
		items = append(items, entity.ProjectItem{
			ID:          uuid.New().String(),
			ProjectID:   project.ID,
			ItemCode:    fmt.Sprintf("K%02d", i+1),
			Description: fmt.Sprintf("Item %d", i+1),
			Quantity:    1,
			Status:      st,
			SortOrder:   i + 1,
		})
	}
	if len(items) > 0 {
		if err := db.Create(&items).Error; err != nil {
			t.Fatalf("Failed to seed items: %v", err)
		}
	}
	return project, items
}

// SeedDrawing links items to a new requirement in the given status.
func SeedDrawing(t *testing.T, db *gorm.DB, projectID string, status entity.DrawingStatus, items ...entity.ProjectItem) *entity.DrawingRequirement {
	t.Helper()
	drawing := &entity.DrawingRequirement{
		ID:        uuid.New().String(),
		ProjectID: projectID,
		Code:      "DR-" + uuid.New().String()[:4],
		Title:     "Seeded drawing",
		Status:    status,
	}
	for _, item := range items {
		drawing.Items = append(drawing.Items, entity.DrawingRequirementItem{
			ID:                   uuid.New().String(),
			DrawingRequirementID: drawing.ID,
			ProjectItemID:        item.ID,
		})
	}
	if err := db.Create(drawing).Error; err != nil {
		t.Fatalf("Failed to seed drawing: %v", err)
	}
	return drawing
}
