package controllers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"

	"github.com/foodcircle/foodcircle-backend/internal/auth"
	"github.com/foodcircle/foodcircle-backend/internal/users"
	pkgerrors "github.com/foodcircle/foodcircle-backend/pkg/errors"
)

type testProfileService struct {
	getFn            func(ctx context.Context, userID uuid.UUID) (*users.UserDTO, error)
	updateFn         func(ctx context.Context, userID uuid.UUID, req auth.UpdateProfileRequest) (*users.UserDTO, error)
	changePasswordFn func(ctx context.Context, userID uuid.UUID, req auth.ChangePasswordRequest) error
}

func (s *testProfileService) Get(ctx context.Context, userID uuid.UUID) (*users.UserDTO, error) {
	if s.getFn != nil {
		return s.getFn(ctx, userID)
	}
	return nil, nil
}

func (s *testProfileService) Update(ctx context.Context, userID uuid.UUID, req auth.UpdateProfileRequest) (*users.UserDTO, error) {
	if s.updateFn != nil {
		return s.updateFn(ctx, userID, req)
	}
	return nil, nil
}

func (s *testProfileService) ChangePassword(ctx context.Context, userID uuid.UUID, req auth.ChangePasswordRequest) error {
	if s.changePasswordFn != nil {
		return s.changePasswordFn(ctx, userID, req)
	}
	return nil
}

func TestGetProfileSuccess(t *testing.T) {
	userID := uuid.New()
	svc := &testProfileService{
		getFn: func(ctx context.Context, id uuid.UUID) (*users.UserDTO, error) {
			if id != userID {
				t.Fatalf("unexpected user %s", id)
			}
			return &users.UserDTO{ID: id, Name: "Dana", Email: "dana@example.com"}, nil
		},
	}

	req := httptest.NewRequest(http.MethodGet, "/api/v1/profile", nil)
	req = withUser(req, userID)
	resp := httptest.NewRecorder()
	GetProfile(svc, testLogger())(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("unexpected status %d", resp.Code)
	}
	var envelope struct {
		Data users.UserDTO `json:"data"`
	}
	if err := json.Unmarshal(resp.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("unmarshal response: %v", err)
	}
	if envelope.Data.Name != "Dana" {
		t.Fatalf("unexpected name %q", envelope.Data.Name)
	}
}

func TestGetProfileMissingUser(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/api/v1/profile", nil)
	resp := httptest.NewRecorder()
	GetProfile(&testProfileService{}, testLogger())(resp, req)
	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 got %d", resp.Code)
	}
}

func TestUpdateProfileForwardsFields(t *testing.T) {
	userID := uuid.New()
	svc := &testProfileService{
		updateFn: func(ctx context.Context, id uuid.UUID, req auth.UpdateProfileRequest) (*users.UserDTO, error) {
			if req.Name == nil || *req.Name != "New Name" {
				t.Fatalf("unexpected name %v", req.Name)
			}
			if req.Phone == nil || *req.Phone != "+1555" {
				t.Fatalf("unexpected phone %v", req.Phone)
			}
			return &users.UserDTO{ID: id, Name: *req.Name}, nil
		},
	}

	body := `{"name":"New Name","phone":"+1555"}`
	req := httptest.NewRequest(http.MethodPut, "/api/v1/profile", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req = withUser(req, userID)
	resp := httptest.NewRecorder()
	UpdateProfile(svc, testLogger())(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("unexpected status %d: %s", resp.Code, resp.Body.String())
	}
}

func TestChangePasswordSuccess(t *testing.T) {
	called := false
	svc := &testProfileService{
		changePasswordFn: func(ctx context.Context, userID uuid.UUID, req auth.ChangePasswordRequest) error {
			called = true
			if req.CurrentPassword != "old-password" || req.NewPassword != "new-password" {
				t.Fatalf("unexpected payload %+v", req)
			}
			return nil
		},
	}

	body := `{"current_password":"old-password","new_password":"new-password"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/profile/password", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req = withUser(req, uuid.New())
	resp := httptest.NewRecorder()
	ChangePassword(svc, testLogger())(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("unexpected status %d: %s", resp.Code, resp.Body.String())
	}
	if !called {
		t.Fatal("expected service called")
	}
}

func TestChangePasswordPropagatesUnauthorized(t *testing.T) {
	svc := &testProfileService{
		changePasswordFn: func(ctx context.Context, userID uuid.UUID, req auth.ChangePasswordRequest) error {
			return pkgerrors.New(pkgerrors.CodeUnauthorized, "current password is incorrect")
		},
	}

	body := `{"current_password":"wrong","new_password":"new-password"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/profile/password", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req = withUser(req, uuid.New())
	resp := httptest.NewRecorder()
	ChangePassword(svc, testLogger())(resp, req)
	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 got %d", resp.Code)
	}
}
