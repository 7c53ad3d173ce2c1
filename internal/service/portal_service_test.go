package service

import (
	"errors"
	"testing"

	"github.com/dorkyWolfie/qr-generator/internal/models"
	"github.com/dorkyWolfie/qr-generator/internal/qrimg"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type fakePortalStore struct {
	bySlug         map[string]*models.WiFiPortal
	hideFromExists bool
	incrementErr   error
}

func newFakePortalStore() *fakePortalStore {
	return &fakePortalStore{bySlug: make(map[string]*models.WiFiPortal)}
}

func (f *fakePortalStore) Create(portal *models.WiFiPortal) error {
	if _, ok := f.bySlug[portal.Slug]; ok {
		return gorm.ErrDuplicatedKey
	}
	portal.ID = uuid.New()
	f.bySlug[portal.Slug] = portal
	return nil
}

func (f *fakePortalStore) GetActiveBySlug(slug string) (*models.WiFiPortal, error) {
	portal, ok := f.bySlug[slug]
	if !ok || !portal.IsActive {
		return nil, gorm.ErrRecordNotFound
	}
	return portal, nil
}

func (f *fakePortalStore) SlugExists(slug string) (bool, error) {
	if f.hideFromExists {
		return false, nil
	}
	_, ok := f.bySlug[slug]
	return ok, nil
}

func (f *fakePortalStore) GetByUserID(userID uuid.UUID) ([]*models.WiFiPortal, error) {
	var out []*models.WiFiPortal
	for _, portal := range f.bySlug {
		if portal.UserID == userID {
			out = append(out, portal)
		}
	}
	return out, nil
}

func (f *fakePortalStore) GetByPortalIDAndUser(portalID string, userID uuid.UUID) (*models.WiFiPortal, error) {
	for _, portal := range f.bySlug {
		if portal.PortalID == portalID && portal.UserID == userID {
			return portal, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakePortalStore) Save(portal *models.WiFiPortal) error {
	f.bySlug[portal.Slug] = portal
	return nil
}

func (f *fakePortalStore) Delete(portalID string, userID uuid.UUID) error {
	for slug, portal := range f.bySlug {
		if portal.PortalID == portalID && portal.UserID == userID {
			delete(f.bySlug, slug)
			return nil
		}
	}
	return gorm.ErrRecordNotFound
}

func (f *fakePortalStore) IncrementVisits(portal *models.WiFiPortal) error {
	return f.incrementErr
}

func newTestPortalService(store PortalStore) *PortalService {
	return NewPortalService(store, qrimg.NewCompositor(zap.NewNop()), "https://qr.example.com", zap.NewNop())
}

func validPortalInput() CreatePortalInput {
	return CreatePortalInput{
		Title:    "Guest WiFi",
		Slug:     "guest-wifi",
		SSID:     "CafeGuest",
		Password: "letmein123",
		Security: models.SecurityWPA2,
	}
}

func TestCreatePortal(t *testing.T) {
	store := newFakePortalStore()
	svc := newTestPortalService(store)

	portal, err := svc.CreatePortal(uuid.New(), validPortalInput())
	if err != nil {
		t.Fatalf("CreatePortal() error = %v", err)
	}
	if portal.Slug != "guest-wifi" {
		t.Errorf("Slug = %q, want %q", portal.Slug, "guest-wifi")
	}
	if portal.PortalID == "" {
		t.Error("PortalID should be generated")
	}
	if portal.QRCodeData == "" {
		t.Error("QRCodeData should be rendered")
	}
	if portal.Instructions != DefaultInstructions {
		t.Errorf("Instructions = %q, want default text", portal.Instructions)
	}
}

func TestCreatePortal_SlugNormalized(t *testing.T) {
	store := newFakePortalStore()
	svc := newTestPortalService(store)

	in := validPortalInput()
	in.Slug = "  GUEST-Wifi "
	portal, err := svc.CreatePortal(uuid.New(), in)
	if err != nil {
		t.Fatalf("CreatePortal() error = %v", err)
	}
	if portal.Slug != "guest-wifi" {
		t.Errorf("Slug = %q, want normalized %q", portal.Slug, "guest-wifi")
	}
}

func TestCreatePortal_Validation(t *testing.T) {
	svc := newTestPortalService(newFakePortalStore())
	userID := uuid.New()

	tests := []struct {
		name   string
		mutate func(*CreatePortalInput)
		want   error
	}{
		{name: "empty title", mutate: func(in *CreatePortalInput) { in.Title = " " }, want: ErrInvalidTitle},
		{name: "invalid slug underscore", mutate: func(in *CreatePortalInput) { in.Slug = "guest_wifi" }, want: ErrInvalidSlug},
		{name: "slug too short", mutate: func(in *CreatePortalInput) { in.Slug = "ab" }, want: ErrInvalidSlug},
		{name: "empty ssid", mutate: func(in *CreatePortalInput) { in.SSID = "" }, want: ErrInvalidSSID},
		{name: "ssid too long", mutate: func(in *CreatePortalInput) { in.SSID = "a-network-name-well-over-thirty-two-characters" }, want: ErrInvalidSSID},
		{name: "unknown security", mutate: func(in *CreatePortalInput) { in.Security = "WPA9" }, want: ErrInvalidSecurity},
		{name: "secured without password", mutate: func(in *CreatePortalInput) { in.Password = "" }, want: ErrPasswordRequired},
		{name: "password too long", mutate: func(in *CreatePortalInput) {
			long := make([]byte, 64)
			for i := range long {
				long[i] = 'a'
			}
			in.Password = string(long)
		}, want: ErrPasswordTooLong},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := validPortalInput()
			tt.mutate(&in)
			if _, err := svc.CreatePortal(userID, in); !errors.Is(err, tt.want) {
				t.Errorf("CreatePortal() = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestCreatePortal_OpenNetworkNeedsNoPassword(t *testing.T) {
	svc := newTestPortalService(newFakePortalStore())

	in := validPortalInput()
	in.Security = models.SecurityNoPass
	in.Password = ""
	if _, err := svc.CreatePortal(uuid.New(), in); err != nil {
		t.Fatalf("CreatePortal(open network) error = %v", err)
	}
}

func TestCreatePortal_SlugConflict(t *testing.T) {
	store := newFakePortalStore()
	svc := newTestPortalService(store)

	if _, err := svc.CreatePortal(uuid.New(), validPortalInput()); err != nil {
		t.Fatalf("first create error = %v", err)
	}
	if _, err := svc.CreatePortal(uuid.New(), validPortalInput()); !errors.Is(err, ErrSlugTaken) {
		t.Fatalf("CreatePortal(duplicate slug) = %v, want ErrSlugTaken", err)
	}
}

func TestCreatePortal_ConflictAtInsertAfterAdvisoryPass(t *testing.T) {
	store := newFakePortalStore()
	svc := newTestPortalService(store)

	if _, err := svc.CreatePortal(uuid.New(), validPortalInput()); err != nil {
		t.Fatalf("first create error = %v", err)
	}

	store.hideFromExists = true

	available, err := svc.CheckSlugAvailability("guest-wifi")
	if err != nil || !available {
		t.Fatalf("CheckSlugAvailability() = %v, %v; want true, nil", available, err)
	}
	if _, err := svc.CreatePortal(uuid.New(), validPortalInput()); !errors.Is(err, ErrSlugTaken) {
		t.Fatalf("CreatePortal() after winning advisory check = %v, want ErrSlugTaken", err)
	}
}

func TestResolvePublic(t *testing.T) {
	store := newFakePortalStore()
	svc := newTestPortalService(store)

	created, err := svc.CreatePortal(uuid.New(), validPortalInput())
	if err != nil {
		t.Fatalf("CreatePortal() error = %v", err)
	}

	portal, err := svc.ResolvePublic("guest-wifi")
	if err != nil {
		t.Fatalf("ResolvePublic() error = %v", err)
	}
	if portal.SSID != "CafeGuest" || portal.Password != "letmein123" {
		t.Error("public resolve should include join credentials")
	}
	if created.Visits != 1 {
		t.Errorf("Visits = %d, want 1", created.Visits)
	}

	if _, err := svc.ResolvePublic("no-such-portal"); !errors.Is(err, ErrPortalNotFound) {
		t.Fatalf("ResolvePublic(missing) = %v, want ErrPortalNotFound", err)
	}
}

func TestResolvePublic_CounterFailureDoesNotFailView(t *testing.T) {
	store := newFakePortalStore()
	svc := newTestPortalService(store)

	if _, err := svc.CreatePortal(uuid.New(), validPortalInput()); err != nil {
		t.Fatalf("CreatePortal() error = %v", err)
	}

	store.incrementErr = errors.New("storage unavailable")

	if _, err := svc.ResolvePublic("guest-wifi"); err != nil {
		t.Fatalf("ResolvePublic() = %v, want success despite counter failure", err)
	}
}

func TestUpdatePortal_SecurityPasswordInvariant(t *testing.T) {
	store := newFakePortalStore()
	svc := newTestPortalService(store)
	userID := uuid.New()

	in := validPortalInput()
	in.Security = models.SecurityNoPass
	in.Password = ""
	portal, err := svc.CreatePortal(userID, in)
	if err != nil {
		t.Fatalf("CreatePortal() error = %v", err)
	}

	// Switching to a secured mode without supplying a password must fail.
	secured := models.SecurityWPA2
	if _, err := svc.UpdatePortal(portal.PortalID, userID, UpdatePortalInput{Security: &secured}); !errors.Is(err, ErrPasswordRequired) {
		t.Fatalf("UpdatePortal(secured, no password) = %v, want ErrPasswordRequired", err)
	}

	password := "newpass123"
	updated, err := svc.UpdatePortal(portal.PortalID, userID, UpdatePortalInput{Security: &secured, Password: &password})
	if err != nil {
		t.Fatalf("UpdatePortal(secured with password) error = %v", err)
	}
	if updated.Security != models.SecurityWPA2 || updated.Password != "newpass123" {
		t.Error("update should apply security and password together")
	}
}

func TestDeletePortal(t *testing.T) {
	store := newFakePortalStore()
	svc := newTestPortalService(store)
	userID := uuid.New()

	portal, err := svc.CreatePortal(userID, validPortalInput())
	if err != nil {
		t.Fatalf("CreatePortal() error = %v", err)
	}

	if err := svc.DeletePortal(portal.PortalID, uuid.New()); !errors.Is(err, ErrPortalNotFound) {
		t.Fatalf("DeletePortal(wrong owner) = %v, want ErrPortalNotFound", err)
	}
	if err := svc.DeletePortal(portal.PortalID, userID); err != nil {
		t.Fatalf("DeletePortal() error = %v", err)
	}
	if _, err := svc.ResolvePublic("guest-wifi"); !errors.Is(err, ErrPortalNotFound) {
		t.Fatalf("ResolvePublic() after delete = %v, want ErrPortalNotFound", err)
	}
}
