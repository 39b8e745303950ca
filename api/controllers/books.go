package controllers

import (
	"net/http"
	"strings"

	"github.com/mehtakaran9/librarium-backend/api/responses"
	"github.com/mehtakaran9/librarium-backend/api/validators"
	booksvc "github.com/mehtakaran9/librarium-backend/internal/books"
	pkgerrors "github.com/mehtakaran9/librarium-backend/pkg/errors"
	"github.com/mehtakaran9/librarium-backend/pkg/logger"
)

type createBookRequest struct {
	Title           string  `json:"title" validate:"required"`
	Author          string  `json:"author" validate:"required"`
	Publisher       *string `json:"publisher,omitempty"`
	ISBN            string  `json:"isbn" validate:"required"`
	Genre           *string `json:"genre,omitempty"`
	PublicationYear *int    `json:"publication_year,omitempty" validate:"omitempty,min=1400"`
	TotalCopies     int     `json:"total_copies" validate:"required,min=1"`
	ShelfLocation   *string `json:"shelf_location,omitempty"`
	Summary         *string `json:"summary,omitempty"`
}

type updateBookRequest struct {
	Title           *string `json:"title,omitempty"`
	Author          *string `json:"author,omitempty"`
	Publisher       *string `json:"publisher,omitempty"`
	Genre           *string `json:"genre,omitempty"`
	PublicationYear *int    `json:"publication_year,omitempty" validate:"omitempty,min=1400"`
	TotalCopies     *int    `json:"total_copies,omitempty" validate:"omitempty,min=0"`
	ShelfLocation   *string `json:"shelf_location,omitempty"`
	Summary         *string `json:"summary,omitempty"`
}

// BookCreate adds a title to the catalog with all copies on the shelf.
func BookCreate(svc booksvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "book service unavailable"))
			return
		}

		var payload createBookRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		book, err := svc.Create(r.Context(), booksvc.CreateInput{
			Title:           payload.Title,
			Author:          payload.Author,
			Publisher:       payload.Publisher,
			ISBN:            payload.ISBN,
			Genre:           payload.Genre,
			PublicationYear: payload.PublicationYear,
			TotalCopies:     payload.TotalCopies,
			ShelfLocation:   payload.ShelfLocation,
			Summary:         payload.Summary,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, book)
	}
}

// BookList searches the catalog by title, author, or genre.
func BookList(svc booksvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "book service unavailable"))
			return
		}

		params, err := validators.PaginationParams(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		filters := booksvc.ListFilters{
			Query:  strings.TrimSpace(r.URL.Query().Get("q")),
			Author: strings.TrimSpace(r.URL.Query().Get("author")),
			Genre:  strings.TrimSpace(r.URL.Query().Get("genre")),
		}

		list, err := svc.List(r.Context(), params, filters)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, list)
	}
}

func BookDetail(svc booksvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "book service unavailable"))
			return
		}

		id, err := pathUUID(r, "bookId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		book, err := svc.GetByID(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, book)
	}
}

// BookUpdate applies a partial catalog edit. A total_copies change moves the
// shelf count by the same delta.
func BookUpdate(svc booksvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "book service unavailable"))
			return
		}

		id, err := pathUUID(r, "bookId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload updateBookRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		book, err := svc.Update(r.Context(), id, booksvc.UpdateInput{
			Title:           payload.Title,
			Author:          payload.Author,
			Publisher:       payload.Publisher,
			Genre:           payload.Genre,
			PublicationYear: payload.PublicationYear,
			TotalCopies:     payload.TotalCopies,
			ShelfLocation:   payload.ShelfLocation,
			Summary:         payload.Summary,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, book)
	}
}

// BookDelete removes a title that has no copies in circulation.
func BookDelete(svc booksvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "book service unavailable"))
			return
		}

		id, err := pathUUID(r, "bookId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.Delete(r.Context(), id); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]string{"status": "deleted"})
	}
}
