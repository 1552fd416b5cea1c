package util

import (
	"encoding/json"
	"errors"
	"exam_reviewer_backend/internal/model"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func TestStatusFor(t *testing.T) {
	cases := []struct {
		err  error
		want int
	}{
		{NewValidationError("time_limit", "is required"), http.StatusBadRequest},
		{NotFoundf("attempt %d", 1), http.StatusNotFound},
		{fmt.Errorf("%w: deadline passed", ErrExpired), http.StatusForbidden},
		{Forbiddenf("not your attempt"), http.StatusForbidden},
		{Conflictf("already submitted"), http.StatusConflict},
		{errors.New("driver: bad connection"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		if got := StatusFor(tc.err); got != tc.want {
			t.Errorf("StatusFor(%v) = %d, want %d", tc.err, got, tc.want)
		}
	}
}

func TestRespondErrorRendersFieldsAndHidesInternals(t *testing.T) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	RespondError(c, &ValidationError{Fields: map[string]string{"question_amount": "must be at most 70"}})

	var body Response
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatal(err)
	}
	if body.Status != StatusError || body.Error != "validation" || body.Errors["question_amount"] == "" {
		t.Fatalf("unexpected body %+v", body)
	}

	w = httptest.NewRecorder()
	c, _ = gin.CreateTestContext(w)
	RespondError(c, errors.New("Error 1146: Table 'results' doesn't exist"))
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatal(err)
	}
	if w.Code != http.StatusInternalServerError || body.Message != "Internal server error" {
		t.Fatalf("internal error leaked: %d %+v", w.Code, body)
	}
}

// signToken 模拟身份服务签发令牌
func signToken(t *testing.T, method jwt.SigningMethod, claims *Claims, key interface{}) string {
	t.Helper()
	token, err := jwt.NewWithClaims(method, claims).SignedString(key)
	if err != nil {
		t.Fatal(err)
	}
	return token
}

func TestJWTRoundTrip(t *testing.T) {
	claims := &Claims{
		UserID: 42,
		Role:   model.Student,
		Email:  "s@example.edu",
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
	token := signToken(t, jwt.SigningMethodHS256, claims, []byte("secret"))
	parsed, err := ParseJWT(token, "secret")
	if err != nil {
		t.Fatal(err)
	}
	if parsed.UserID != 42 || parsed.Role != model.Student {
		t.Fatalf("unexpected claims %+v", parsed)
	}
	if _, err := ParseJWT(token, "other"); err == nil {
		t.Fatal("expected signature error")
	}

	// 只接受 HS256
	hs512 := signToken(t, jwt.SigningMethodHS512, claims, []byte("secret"))
	if _, err := ParseJWT(hs512, "secret"); err == nil {
		t.Fatal("expected HS512 token to be rejected")
	}
}

func TestJWTExpired(t *testing.T) {
	claims := &Claims{
		UserID: 42,
		Role:   model.Student,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Minute)),
		},
	}
	if _, err := ParseJWT(signToken(t, jwt.SigningMethodHS256, claims, []byte("secret")), "secret"); err == nil {
		t.Fatal("expected expired token to be rejected")
	}
}
