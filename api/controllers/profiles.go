package controllers

import (
	"net/http"

	"github.com/angelmondragon/bazaar-backend/api/responses"
	"github.com/angelmondragon/bazaar-backend/api/validators"
	"github.com/angelmondragon/bazaar-backend/internal/users"
	"github.com/angelmondragon/bazaar-backend/pkg/logger"
)

const profileImageField = "image"

// UpdateBuyerProfile accepts a multipart edit of the buyer profile.
func UpdateBuyerProfile(svc users.Service, maxBytes int64, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, err := requireUser(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		image, err := readProfileForm(w, r, maxBytes)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		defer image.Close()

		input := users.BuyerProfileInput{
			Name:            formValue(r, "name"),
			PhoneNumber:     formValue(r, "phone_number"),
			ShippingAddress: formValue(r, "shipping_address"),
		}
		user, err := svc.UpdateBuyerProfile(r.Context(), userID, input, toUserImage(image))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, user)
	}
}

// UpdateSellerProfile accepts a multipart edit of the seller profile.
func UpdateSellerProfile(svc users.Service, maxBytes int64, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, err := requireUser(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		image, err := readProfileForm(w, r, maxBytes)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		defer image.Close()

		input := users.SellerProfileInput{
			Name:            formValue(r, "name"),
			ShopName:        formValue(r, "shop_name"),
			ShopDescription: formValue(r, "shop_description"),
			ShopAddress:     formValue(r, "shop_address"),
			PhoneNumber:     formValue(r, "phone_number"),
		}
		user, err := svc.UpdateSellerProfile(r.Context(), userID, input, toUserImage(image))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, user)
	}
}

func readProfileForm(w http.ResponseWriter, r *http.Request, maxBytes int64) (*validators.Image, error) {
	if err := validators.ParseMultipart(w, r, maxBytes); err != nil {
		return nil, err
	}
	return validators.FormImage(r, profileImageField, maxBytes)
}

func toUserImage(img *validators.Image) *users.Image {
	if img == nil {
		return nil
	}
	return &users.Image{
		Body:        img.Body,
		Size:        img.Size,
		ContentType: img.ContentType,
		Ext:         img.Ext,
	}
}
