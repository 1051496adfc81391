package controllers

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/angelmondragon/bazaar-backend/api/responses"
	"github.com/angelmondragon/bazaar-backend/api/validators"
	"github.com/angelmondragon/bazaar-backend/internal/likes"
	"github.com/angelmondragon/bazaar-backend/pkg/logger"
)

type likeAction func(svc likes.Service, r *http.Request, userID, productID uuid.UUID) (likes.State, error)

func LikeProduct(svc likes.Service, logg *logger.Logger) http.HandlerFunc {
	return toggleLike(svc, logg, func(svc likes.Service, r *http.Request, userID, productID uuid.UUID) (likes.State, error) {
		return svc.Like(r.Context(), userID, productID)
	})
}

func UnlikeProduct(svc likes.Service, logg *logger.Logger) http.HandlerFunc {
	return toggleLike(svc, logg, func(svc likes.Service, r *http.Request, userID, productID uuid.UUID) (likes.State, error) {
		return svc.Unlike(r.Context(), userID, productID)
	})
}

func toggleLike(svc likes.Service, logg *logger.Logger, action likeAction) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, err := requireUser(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		productID, err := pathUUID(r, productIDParam)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		state, err := action(svc, r, userID, productID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, state)
	}
}

// ListLikedProducts pages through the caller's likes, newest first.
func ListLikedProducts(svc likes.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, err := requireUser(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		params, err := validators.ParsePagination(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		page, err := svc.ListLiked(r.Context(), userID, params)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WritePage(w, page)
	}
}
