package users

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"testing"

	"github.com/angelmondragon/bazaar-backend/pkg/db"
	"github.com/angelmondragon/bazaar-backend/pkg/db/dbtest"
	"github.com/angelmondragon/bazaar-backend/pkg/db/models"
	"github.com/angelmondragon/bazaar-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/bazaar-backend/pkg/errors"
	"github.com/angelmondragon/bazaar-backend/pkg/logger"
	"github.com/angelmondragon/bazaar-backend/pkg/storage"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

const bucketURL = "https://cdn.test/bucket"

type fakeUploader struct {
	uploaded  []string
	deleted   []string
	uploadErr error
}

func (f *fakeUploader) Upload(_ context.Context, obj storage.Object) (string, error) {
	if f.uploadErr != nil {
		return "", f.uploadErr
	}
	if _, err := io.Copy(io.Discard, obj.Body); err != nil {
		return "", err
	}
	f.uploaded = append(f.uploaded, obj.Key)
	return storage.JoinURL(bucketURL, obj.Key), nil
}

func (f *fakeUploader) Delete(_ context.Context, key string) error {
	f.deleted = append(f.deleted, key)
	return nil
}

func (f *fakeUploader) KeyFromURL(rawURL string) (string, bool) {
	return storage.TrimBase(bucketURL, rawURL)
}

func (f *fakeUploader) Ping(context.Context) error { return nil }

func newTestService(t *testing.T) (*gorm.DB, *fakeUploader, Service) {
	t.Helper()
	conn := dbtest.Open(t)
	uploader := &fakeUploader{}
	svc, err := NewService(ServiceParams{
		Repo:      NewRepository(conn),
		DB:        db.Wrap(conn),
		Storage:   uploader,
		KeyPrefix: "profiles",
		Logger:    logger.New(logger.Options{ServiceName: "users-test", Output: io.Discard}),
	})
	require.NoError(t, err)
	return conn, uploader, svc
}

func pngImage() *Image {
	return &Image{Body: strings.NewReader("\x89PNG\r\n\x1a\n"), Size: 8, ContentType: "image/png", Ext: "png"}
}

func strPtr(v string) *string { return &v }

func TestMeIncludesRoleProfile(t *testing.T) {
	conn, _, svc := newTestService(t)
	seller, shop := dbtest.MustSeller(t, conn)

	dto, err := svc.Me(context.Background(), seller.ID)

	require.NoError(t, err)
	assert.Equal(t, enums.UserRoleSeller, dto.Role)
	require.NotNil(t, dto.Profile)
	assert.Equal(t, "Test", dto.Profile.Name)
	require.NotNil(t, dto.Seller)
	assert.Equal(t, shop.ID, dto.Seller.ID)
	assert.Nil(t, dto.Buyer)
}

func TestMeUnknownUser(t *testing.T) {
	_, _, svc := newTestService(t)

	_, err := svc.Me(context.Background(), uuid.New())

	assert.Equal(t, pkgerrors.CodeNotFound, pkgerrors.CodeOf(err))
}

func TestUpdateBuyerProfileCreatesMissingRows(t *testing.T) {
	conn, uploader, svc := newTestService(t)
	buyer := dbtest.MustUser(t, conn, enums.UserRoleBuyer)

	dto, err := svc.UpdateBuyerProfile(context.Background(), buyer.ID, BuyerProfileInput{
		Name:            strPtr("  Ana  "),
		ShippingAddress: strPtr("1 Main St"),
	}, pngImage())

	require.NoError(t, err)
	assert.Equal(t, "Ana", dto.Profile.Name)
	require.NotNil(t, dto.Profile.ImageURL)
	assert.True(t, strings.HasPrefix(*dto.Profile.ImageURL, bucketURL+"/profiles/users/"+buyer.ID.String()+"/"))
	require.NotNil(t, dto.Buyer)
	assert.Equal(t, "1 Main St", *dto.Buyer.ShippingAddress)
	assert.Nil(t, dto.Buyer.PhoneNumber)
	assert.Len(t, uploader.uploaded, 1)
	assert.Empty(t, uploader.deleted)
}

func TestUpdateBuyerProfileLeavesOmittedFields(t *testing.T) {
	conn, _, svc := newTestService(t)
	buyer := dbtest.MustUser(t, conn, enums.UserRoleBuyer)
	ctx := context.Background()

	_, err := svc.UpdateBuyerProfile(ctx, buyer.ID, BuyerProfileInput{PhoneNumber: strPtr("555")}, nil)
	require.NoError(t, err)

	dto, err := svc.UpdateBuyerProfile(ctx, buyer.ID, BuyerProfileInput{ShippingAddress: strPtr("2 Side St")}, nil)
	require.NoError(t, err)

	assert.Equal(t, "555", *dto.Buyer.PhoneNumber)
	assert.Equal(t, "2 Side St", *dto.Buyer.ShippingAddress)
	assert.Equal(t, "Test", dto.Profile.Name)
}

func TestUpdateProfileReplacesOldImage(t *testing.T) {
	conn, uploader, svc := newTestService(t)
	buyer := dbtest.MustUser(t, conn, enums.UserRoleBuyer)
	ctx := context.Background()

	first, err := svc.UpdateBuyerProfile(ctx, buyer.ID, BuyerProfileInput{}, pngImage())
	require.NoError(t, err)
	oldKey, ok := uploader.KeyFromURL(*first.Profile.ImageURL)
	require.True(t, ok)

	_, err = svc.UpdateBuyerProfile(ctx, buyer.ID, BuyerProfileInput{}, pngImage())
	require.NoError(t, err)

	assert.Equal(t, []string{oldKey}, uploader.deleted)
}

func TestUpdateProfileUploadFailureAbortsBeforeWrite(t *testing.T) {
	conn, uploader, svc := newTestService(t)
	buyer := dbtest.MustUser(t, conn, enums.UserRoleBuyer)
	uploader.uploadErr = errors.New("bucket offline")

	_, err := svc.UpdateBuyerProfile(context.Background(), buyer.ID, BuyerProfileInput{Name: strPtr("Changed")}, pngImage())

	assert.Equal(t, pkgerrors.CodeDependency, pkgerrors.CodeOf(err))
	var profile models.Profile
	require.NoError(t, conn.First(&profile, "user_id = ?", buyer.ID).Error)
	assert.Equal(t, "Test", profile.Name)
}

func TestUpdateProfileRejectsBlankName(t *testing.T) {
	conn, uploader, svc := newTestService(t)
	buyer := dbtest.MustUser(t, conn, enums.UserRoleBuyer)

	_, err := svc.UpdateBuyerProfile(context.Background(), buyer.ID, BuyerProfileInput{Name: strPtr(" ")}, pngImage())

	assert.Equal(t, pkgerrors.CodeValidation, pkgerrors.CodeOf(err))
	assert.Empty(t, uploader.uploaded)
}

func TestUpdateSellerProfile(t *testing.T) {
	conn, _, svc := newTestService(t)
	seller, _ := dbtest.MustSeller(t, conn)

	dto, err := svc.UpdateSellerProfile(context.Background(), seller.ID, SellerProfileInput{
		ShopName:        strPtr("Corner Store"),
		ShopDescription: strPtr("snacks and drinks"),
	}, nil)

	require.NoError(t, err)
	assert.Equal(t, "Corner Store", *dto.Seller.ShopName)
	assert.Equal(t, "snacks and drinks", *dto.Seller.ShopDescription)
}

func TestFindByGoogleIDOrEmailPrefersGoogleID(t *testing.T) {
	conn, _, _ := newTestService(t)
	r := NewRepository(conn)
	ctx := context.Background()

	// uuid order between the two accounts is random, so check several pairs.
	for i := 0; i < 8; i++ {
		byEmail := dbtest.MustUser(t, conn, enums.UserRoleBuyer)
		byGoogle := dbtest.MustUser(t, conn, enums.UserRoleBuyer)
		sub := fmt.Sprintf("google-sub-%d", i)
		require.NoError(t, r.LinkGoogleID(ctx, byGoogle.ID, sub))

		found, err := r.FindByGoogleIDOrEmail(ctx, sub, byEmail.Email)

		require.NoError(t, err)
		assert.Equal(t, byGoogle.ID, found.ID, "pair %d", i)
	}
}

func TestFindByGoogleIDOrEmailFallsBackToEmail(t *testing.T) {
	conn, _, _ := newTestService(t)
	r := NewRepository(conn)
	ctx := context.Background()

	byEmail := dbtest.MustUser(t, conn, enums.UserRoleBuyer)

	found, err := r.FindByGoogleIDOrEmail(ctx, "unknown-sub", byEmail.Email)
	require.NoError(t, err)
	assert.Equal(t, byEmail.ID, found.ID)

	_, err = r.FindByGoogleIDOrEmail(ctx, "unknown-sub", "nobody@example.com")
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}
