// user.go - Handles email login

package handlers // Declares the package name

import ( // Import required packages
	"encoding/json" // For decoding the email value
	"errors"        // For classifying lookup errors
	"log/slog"      // Diagnostic logging
	"net/http"      // HTTP status codes

	"email-login-backend/database" // Session provider
	"email-login-backend/models"   // Row type

	"github.com/gin-gonic/gin"           // Gin web framework
	"go.opentelemetry.io/otel"           // Global tracer provider
	"go.opentelemetry.io/otel/attribute" // Span attributes
	"go.opentelemetry.io/otel/codes"     // Span status codes
	"go.opentelemetry.io/otel/trace"     // Tracer interface
)

type LoginInput struct { // Struct for login input
	Email string // Email (required, non-empty)
}

// bindLoginInput reads the body as a raw object so only the exact "email" key counts.
// Struct binding would also accept "Email" or "EMAIL", since encoding/json folds case.
func bindLoginInput(c *gin.Context) (LoginInput, error) {
	var body map[string]json.RawMessage
	if err := c.ShouldBindJSON(&body); err != nil { // Empty body or bad JSON
		return LoginInput{}, err
	}
	raw, ok := body["email"] // Case-sensitive lookup
	if !ok {
		return LoginInput{}, errors.New("email key missing")
	}
	var email string
	if err := json.Unmarshal(raw, &email); err != nil { // Not a string
		return LoginInput{}, err
	}
	if email == "" { // Also covers "email": null
		return LoginInput{}, errors.New("email is empty")
	}
	return LoginInput{Email: email}, nil
}

// LoginResponse is the body of every /login reply. User is set only on success.
type LoginResponse struct {
	Message string      `json:"message"`
	User    *models.Row `json:"user,omitempty"`
}

// LoginHandler looks users up by email through a scoped database session.
type LoginHandler struct {
	provider database.Provider
	tracer   trace.Tracer
}

func NewLoginHandler(p database.Provider) *LoginHandler {
	return &LoginHandler{
		provider: p,
		tracer:   otel.Tracer("email-login-backend/handlers"),
	}
}

// Login - Handler for POST /login
//
// Request Flow:
// 1. Read {"email": "..."}; missing body or empty email is a 400
// 2. Open a session (500 on failure) and defer its Close
// 3. Look the email up: 200 with the row, 404 if absent, 500 on query error
func (h *LoginHandler) Login(c *gin.Context) {
	ctx, span := h.tracer.Start(c.Request.Context(), "Login")
	defer span.End()
	c.Request = c.Request.WithContext(ctx) // Database spans nest under this one

	input, err := bindLoginInput(c)
	if err != nil { // Covers empty body, bad JSON and missing or empty email
		h.fail(c, span, &ErrValidation{Field: "email", Err: err})
		return
	}

	user, err := h.lookup(c, input.Email)
	if err != nil {
		h.fail(c, span, err)
		return
	}

	slog.InfoContext(ctx, "User found", "email", input.Email)
	span.SetAttributes(attribute.String("login.outcome", "found"))
	c.JSON(http.StatusOK, LoginResponse{Message: MsgLoginSuccess, User: user})
}

// lookup owns the session so it is closed on every return path.
func (h *LoginHandler) lookup(c *gin.Context, email string) (*models.Row, error) {
	ctx := c.Request.Context()

	session, err := h.provider.Open(ctx)
	if err != nil {
		return nil, &ErrInfrastructure{Op: "open session", Err: err}
	}
	defer func() {
		if cerr := session.Close(); cerr != nil {
			slog.WarnContext(ctx, "Failed to close database session", "error", cerr)
		}
	}()

	user, err := session.FindUserByEmail(ctx, email)
	if errors.Is(err, database.ErrUserNotFound) {
		return nil, &ErrNotFound{Email: email}
	}
	if err != nil {
		return nil, &ErrInfrastructure{Op: "find user by email", Err: err}
	}
	return user, nil
}

func (h *LoginHandler) fail(c *gin.Context, span trace.Span, err error) {
	ctx := c.Request.Context()
	status := HTTPStatus(err)

	var notFound *ErrNotFound
	switch {
	case status == http.StatusBadRequest:
		slog.InfoContext(ctx, "Login rejected", "error", err)
		span.SetAttributes(attribute.String("login.outcome", "invalid"))
	case errors.As(err, &notFound):
		slog.InfoContext(ctx, "User not found", "email", notFound.Email)
		span.SetAttributes(attribute.String("login.outcome", "not_found"))
	default:
		slog.ErrorContext(ctx, "Database error", "error", err)
		span.RecordError(err)
		span.SetStatus(codes.Error, "database error")
	}

	c.JSON(status, LoginResponse{Message: Message(err)})
}
