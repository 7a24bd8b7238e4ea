package util

import (
	"exam_portal_backend/internal/model"
	"testing"
	"time"
)

func TestJWTRoundTrip(t *testing.T) {
	user := &model.User{
		BaseModel: model.BaseModel{ID: 42},
		Email:     "candidate@example.com",
		Role:      model.Student,
	}

	token, err := GenerateJWT(user, "test-secret", time.Hour)
	if err != nil {
		t.Fatalf("GenerateJWT() error = %v", err)
	}

	claims, err := ParseJWT(token, "test-secret")
	if err != nil {
		t.Fatalf("ParseJWT() error = %v", err)
	}
	if claims.UserID != 42 || claims.Role != model.Student || claims.Email != "candidate@example.com" {
		t.Errorf("claims = %+v", claims)
	}
}

func TestJWTRejectsWrongSecret(t *testing.T) {
	user := &model.User{BaseModel: model.BaseModel{ID: 1}}
	token, _ := GenerateJWT(user, "test-secret", time.Hour)

	if _, err := ParseJWT(token, "other-secret"); err == nil {
		t.Error("token signed with a different secret must not parse")
	}
}

func TestJWTRejectsExpiredToken(t *testing.T) {
	user := &model.User{BaseModel: model.BaseModel{ID: 1}}
	token, _ := GenerateJWT(user, "test-secret", -time.Minute)

	if _, err := ParseJWT(token, "test-secret"); err == nil {
		t.Error("expired token must not parse")
	}
}
