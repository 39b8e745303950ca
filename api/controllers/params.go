package controllers

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/mehtakaran9/librarium-backend/api/middleware"
	"github.com/mehtakaran9/librarium-backend/pkg/enums"
	pkgerrors "github.com/mehtakaran9/librarium-backend/pkg/errors"
)

func pathUUID(r *http.Request, key string) (uuid.UUID, error) {
	raw := strings.TrimSpace(chi.URLParam(r, key))
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid path parameter").WithDetails(map[string]any{"field": key})
	}
	return id, nil
}

// actorID returns the authenticated member's id from the request context.
func actorID(r *http.Request) (uuid.UUID, error) {
	raw := middleware.MemberIDFromContext(r.Context())
	if raw == "" {
		return uuid.Nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "member context missing")
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, pkgerrors.Wrap(pkgerrors.CodeUnauthorized, err, "invalid member context")
	}
	return id, nil
}

func actorIsStaff(r *http.Request) bool {
	return enums.MemberRole(middleware.RoleFromContext(r.Context())).IsStaff()
}

// requireSelfOrStaff admits staff for any member and members for themselves.
func requireSelfOrStaff(r *http.Request, memberID uuid.UUID) error {
	if actorIsStaff(r) {
		return nil
	}
	self, err := actorID(r)
	if err != nil {
		return err
	}
	if self != memberID {
		return pkgerrors.New(pkgerrors.CodeForbidden, "access restricted to own records")
	}
	return nil
}
