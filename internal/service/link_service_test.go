package service

import (
	"errors"
	"testing"

	"github.com/dorkyWolfie/qr-generator/internal/logostore"
	"github.com/dorkyWolfie/qr-generator/internal/models"
	"github.com/dorkyWolfie/qr-generator/internal/qrimg"
	"github.com/dorkyWolfie/qr-generator/internal/security"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type fakeLinkStore struct {
	byCode map[string]*models.ShortLink
	// alwaysConflict simulates losing every insert race.
	alwaysConflict bool
	// hideFromExists simulates the time-of-check/time-of-use gap: the
	// advisory read says available, the insert still conflicts.
	hideFromExists bool
	incrementErr   error
}

func newFakeLinkStore() *fakeLinkStore {
	return &fakeLinkStore{byCode: make(map[string]*models.ShortLink)}
}

func (f *fakeLinkStore) Create(link *models.ShortLink) error {
	if f.alwaysConflict {
		return gorm.ErrDuplicatedKey
	}
	if _, ok := f.byCode[link.ShortCode]; ok {
		return gorm.ErrDuplicatedKey
	}
	link.ID = uuid.New()
	f.byCode[link.ShortCode] = link
	return nil
}

func (f *fakeLinkStore) GetActiveByCode(code string) (*models.ShortLink, error) {
	link, ok := f.byCode[code]
	if !ok || !link.IsActive {
		return nil, gorm.ErrRecordNotFound
	}
	return link, nil
}

func (f *fakeLinkStore) CodeExists(code string) (bool, error) {
	if f.hideFromExists {
		return false, nil
	}
	_, ok := f.byCode[code]
	return ok, nil
}

func (f *fakeLinkStore) GetByUserID(userID uuid.UUID) ([]*models.ShortLink, error) {
	var out []*models.ShortLink
	for _, link := range f.byCode {
		if link.UserID == userID {
			out = append(out, link)
		}
	}
	return out, nil
}

func (f *fakeLinkStore) GetByIDAndUser(id, userID uuid.UUID) (*models.ShortLink, error) {
	for _, link := range f.byCode {
		if link.ID == id && link.UserID == userID {
			return link, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeLinkStore) Save(link *models.ShortLink) error {
	f.byCode[link.ShortCode] = link
	return nil
}

func (f *fakeLinkStore) Delete(id, userID uuid.UUID) error {
	for code, link := range f.byCode {
		if link.ID == id && link.UserID == userID {
			delete(f.byCode, code)
			return nil
		}
	}
	return gorm.ErrRecordNotFound
}

func (f *fakeLinkStore) IncrementClicks(link *models.ShortLink) error {
	return f.incrementErr
}

func newTestLinkService(t *testing.T, store LinkStore, production bool) *LinkService {
	t.Helper()
	logos, err := logostore.NewStore(t.TempDir(), zap.NewNop())
	if err != nil {
		t.Fatalf("failed to create logo store: %v", err)
	}
	validate := func(rawURL string) error {
		return security.ValidateRedirectURL(rawURL, production)
	}
	return NewLinkService(store, logos, qrimg.NewCompositor(zap.NewNop()), validate, "https://qr.example.com", zap.NewNop())
}

func TestCreateShortLink_WithCandidateCode(t *testing.T) {
	store := newFakeLinkStore()
	svc := newTestLinkService(t, store, false)
	userID := uuid.New()

	link, err := svc.CreateShortLink(userID, CreateLinkInput{
		Title:         "Promo",
		TargetURL:     "https://shop.example.com",
		CandidateCode: "promo1",
	})
	if err != nil {
		t.Fatalf("CreateShortLink() error = %v", err)
	}
	if link.ShortCode != "promo1" {
		t.Errorf("ShortCode = %q, want %q", link.ShortCode, "promo1")
	}
	if link.QRCodeData == "" {
		t.Error("QRCodeData should be rendered")
	}
	if link.Clicks != 0 {
		t.Errorf("Clicks = %d, want 0", link.Clicks)
	}

	target, err := svc.Resolve("promo1")
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if target != "https://shop.example.com" {
		t.Errorf("Resolve() = %q, want target URL", target)
	}
	if link.Clicks != 1 {
		t.Errorf("Clicks after resolve = %d, want 1", link.Clicks)
	}
}

func TestCreateShortLink_InvalidCandidate(t *testing.T) {
	svc := newTestLinkService(t, newFakeLinkStore(), false)

	_, err := svc.CreateShortLink(uuid.New(), CreateLinkInput{
		Title:         "Promo",
		TargetURL:     "https://shop.example.com",
		CandidateCode: "a!",
	})
	if !errors.Is(err, ErrInvalidCode) {
		t.Fatalf("CreateShortLink() = %v, want ErrInvalidCode", err)
	}
}

func TestCreateShortLink_CandidateConflict(t *testing.T) {
	store := newFakeLinkStore()
	svc := newTestLinkService(t, store, false)

	if _, err := svc.CreateShortLink(uuid.New(), CreateLinkInput{
		Title: "First", TargetURL: "https://a.example.com", CandidateCode: "taken1",
	}); err != nil {
		t.Fatalf("first create error = %v", err)
	}

	_, err := svc.CreateShortLink(uuid.New(), CreateLinkInput{
		Title: "Second", TargetURL: "https://b.example.com", CandidateCode: "taken1",
	})
	if !errors.Is(err, ErrCodeTaken) {
		t.Fatalf("CreateShortLink() = %v, want ErrCodeTaken", err)
	}
}

func TestCreateShortLink_ConflictAtInsertAfterAdvisoryPass(t *testing.T) {
	store := newFakeLinkStore()
	svc := newTestLinkService(t, store, false)

	if _, err := svc.CreateShortLink(uuid.New(), CreateLinkInput{
		Title: "First", TargetURL: "https://a.example.com", CandidateCode: "raced1",
	}); err != nil {
		t.Fatalf("first create error = %v", err)
	}

	// Advisory check reports available, insert still conflicts.
	store.hideFromExists = true

	available, err := svc.CheckAvailability("raced1")
	if err != nil {
		t.Fatalf("CheckAvailability() error = %v", err)
	}
	if !available {
		t.Fatal("advisory check should report available in this scenario")
	}

	_, err = svc.CreateShortLink(uuid.New(), CreateLinkInput{
		Title: "Second", TargetURL: "https://b.example.com", CandidateCode: "raced1",
	})
	if !errors.Is(err, ErrCodeTaken) {
		t.Fatalf("CreateShortLink() after winning advisory check = %v, want ErrCodeTaken", err)
	}
}

func TestCreateShortLink_GeneratedCode(t *testing.T) {
	store := newFakeLinkStore()
	svc := newTestLinkService(t, store, false)

	link, err := svc.CreateShortLink(uuid.New(), CreateLinkInput{
		Title:     "Generated",
		TargetURL: "https://shop.example.com",
	})
	if err != nil {
		t.Fatalf("CreateShortLink() error = %v", err)
	}
	if len(link.ShortCode) != 8 {
		t.Errorf("generated code length = %d, want 8", len(link.ShortCode))
	}
}

func TestCreateShortLink_AllocatorExhausted(t *testing.T) {
	store := newFakeLinkStore()
	store.alwaysConflict = true
	svc := newTestLinkService(t, store, false)

	_, err := svc.CreateShortLink(uuid.New(), CreateLinkInput{
		Title:     "Unlucky",
		TargetURL: "https://shop.example.com",
	})
	if !errors.Is(err, ErrAllocatorExhausted) {
		t.Fatalf("CreateShortLink() = %v, want ErrAllocatorExhausted", err)
	}
}

func TestCreateShortLink_BlockedTarget(t *testing.T) {
	svc := newTestLinkService(t, newFakeLinkStore(), false)

	_, err := svc.CreateShortLink(uuid.New(), CreateLinkInput{
		Title:     "Bad",
		TargetURL: "https://example.tk",
	})
	if !errors.Is(err, security.ErrBlockedTLD) {
		t.Fatalf("CreateShortLink() = %v, want ErrBlockedTLD", err)
	}
}

func TestResolve_NotFound(t *testing.T) {
	svc := newTestLinkService(t, newFakeLinkStore(), false)

	if _, err := svc.Resolve("missing1"); !errors.Is(err, ErrLinkNotFound) {
		t.Fatalf("Resolve() = %v, want ErrLinkNotFound", err)
	}
}

func TestResolve_InactiveLinkNotFound(t *testing.T) {
	store := newFakeLinkStore()
	svc := newTestLinkService(t, store, false)
	userID := uuid.New()

	link, err := svc.CreateShortLink(userID, CreateLinkInput{
		Title: "Promo", TargetURL: "https://shop.example.com", CandidateCode: "promo2",
	})
	if err != nil {
		t.Fatalf("CreateShortLink() error = %v", err)
	}

	inactive := false
	if _, err := svc.UpdateShortLink(link.ID, userID, UpdateLinkInput{IsActive: &inactive}); err != nil {
		t.Fatalf("UpdateShortLink() error = %v", err)
	}

	if _, err := svc.Resolve("promo2"); !errors.Is(err, ErrLinkNotFound) {
		t.Fatalf("Resolve() on disabled link = %v, want ErrLinkNotFound", err)
	}
}

func TestResolve_CounterFailureDoesNotFailRedirect(t *testing.T) {
	store := newFakeLinkStore()
	svc := newTestLinkService(t, store, false)

	if _, err := svc.CreateShortLink(uuid.New(), CreateLinkInput{
		Title: "Promo", TargetURL: "https://shop.example.com", CandidateCode: "promo3",
	}); err != nil {
		t.Fatalf("CreateShortLink() error = %v", err)
	}

	store.incrementErr = errors.New("storage unavailable")

	target, err := svc.Resolve("promo3")
	if err != nil {
		t.Fatalf("Resolve() = %v, want success despite counter failure", err)
	}
	if target != "https://shop.example.com" {
		t.Errorf("Resolve() = %q, want target URL", target)
	}
}

func TestResolve_RevalidatesStoredTarget(t *testing.T) {
	store := newFakeLinkStore()
	svc := newTestLinkService(t, store, true)

	// Insert behind the service's back: a target that would not pass
	// today's production validation.
	store.byCode["old1"] = &models.ShortLink{
		ID: uuid.New(), UserID: uuid.New(), ShortCode: "old1",
		TargetURL: "http://127.0.0.1/admin", IsActive: true,
	}

	if _, err := svc.Resolve("old1"); !errors.Is(err, security.ErrPrivateNetwork) {
		t.Fatalf("Resolve() = %v, want ErrPrivateNetwork", err)
	}
}

func TestCheckAvailability(t *testing.T) {
	store := newFakeLinkStore()
	svc := newTestLinkService(t, store, false)

	available, err := svc.CheckAvailability("fresh1")
	if err != nil || !available {
		t.Fatalf("CheckAvailability(fresh1) = %v, %v; want true, nil", available, err)
	}

	if _, err := svc.CreateShortLink(uuid.New(), CreateLinkInput{
		Title: "X", TargetURL: "https://a.example.com", CandidateCode: "fresh1",
	}); err != nil {
		t.Fatalf("CreateShortLink() error = %v", err)
	}

	available, err = svc.CheckAvailability("fresh1")
	if err != nil || available {
		t.Fatalf("CheckAvailability(taken) = %v, %v; want false, nil", available, err)
	}

	if _, err := svc.CheckAvailability("!"); !errors.Is(err, ErrInvalidCode) {
		t.Fatalf("CheckAvailability(invalid) = %v, want ErrInvalidCode", err)
	}
}

func TestUpdateShortLink_TargetChangeRerendersQR(t *testing.T) {
	store := newFakeLinkStore()
	svc := newTestLinkService(t, store, false)
	userID := uuid.New()

	link, err := svc.CreateShortLink(userID, CreateLinkInput{
		Title: "Promo", TargetURL: "https://shop.example.com", CandidateCode: "promo4",
	})
	if err != nil {
		t.Fatalf("CreateShortLink() error = %v", err)
	}

	newTarget := "https://other.example.com"
	updated, err := svc.UpdateShortLink(link.ID, userID, UpdateLinkInput{TargetURL: &newTarget})
	if err != nil {
		t.Fatalf("UpdateShortLink() error = %v", err)
	}
	if updated.TargetURL != newTarget {
		t.Errorf("TargetURL = %q, want %q", updated.TargetURL, newTarget)
	}
	if updated.QRCodeData == "" {
		t.Error("QRCodeData should be re-rendered")
	}

	blocked := "https://example.tk"
	if _, err := svc.UpdateShortLink(link.ID, userID, UpdateLinkInput{TargetURL: &blocked}); !errors.Is(err, security.ErrBlockedTLD) {
		t.Fatalf("UpdateShortLink(blocked) = %v, want ErrBlockedTLD", err)
	}
}

func TestDeleteShortLink(t *testing.T) {
	store := newFakeLinkStore()
	svc := newTestLinkService(t, store, false)
	userID := uuid.New()

	link, err := svc.CreateShortLink(userID, CreateLinkInput{
		Title: "Promo", TargetURL: "https://shop.example.com", CandidateCode: "promo5",
	})
	if err != nil {
		t.Fatalf("CreateShortLink() error = %v", err)
	}

	if err := svc.DeleteShortLink(link.ID, uuid.New()); !errors.Is(err, ErrLinkNotFound) {
		t.Fatalf("DeleteShortLink(wrong owner) = %v, want ErrLinkNotFound", err)
	}

	if err := svc.DeleteShortLink(link.ID, userID); err != nil {
		t.Fatalf("DeleteShortLink() error = %v", err)
	}

	if _, err := svc.Resolve("promo5"); !errors.Is(err, ErrLinkNotFound) {
		t.Fatalf("Resolve() after delete = %v, want ErrLinkNotFound", err)
	}
}
