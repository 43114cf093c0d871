package utils

import (
	"errors"
	"time"

	"rps-backend/app/model"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Purpose token. Token "restore" hanya bisa dipakai untuk mengakhiri
// impersonation, tidak untuk mengakses resource.
const (
	PurposeAccess  = "access"
	PurposeRestore = "restore"
)

var (
	ErrInvalidToken = errors.New("invalid token")
	ErrTokenPurpose = errors.New("token purpose mismatch")
	ErrEmptyJWTKey  = errors.New("JWT secret is empty")
)

/*
 Claims

 Isi token:
 - id, role, active_role         : identitas dan role yang sedang dipakai
 - program_id, faculty_id,
   institution_id, angkatan       : anchor organisasi untuk ResolveScope
 - available_roles                : role tambahan untuk switch-role
 - impersonating,
   original_admin_id              : terisi saat superadmin menyamar
 - purpose                        : access | restore
*/
type Claims struct {
	UserID          uuid.UUID    `json:"id"`
	Role            model.Role   `json:"role"`
	ActiveRole      model.Role   `json:"active_role,omitempty"`
	ProgramID       *int64       `json:"program_id,omitempty"`
	FacultyID       *int64       `json:"faculty_id,omitempty"`
	InstitutionID   *int64       `json:"institution_id,omitempty"`
	Angkatan        *int         `json:"angkatan,omitempty"`
	AvailableRoles  []model.Role `json:"available_roles,omitempty"`
	Impersonating   bool         `json:"impersonating,omitempty"`
	OriginalAdminID *uuid.UUID   `json:"original_admin_id,omitempty"`
	Purpose         string       `json:"purpose"`
	jwt.RegisteredClaims
}

// Principal mengubah claims menjadi identitas request.
func (c *Claims) Principal() model.Principal {
	p := model.Principal{
		ID:             c.UserID,
		PrimaryRole:    c.Role,
		ActiveRole:     c.ActiveRole,
		InstitutionID:  c.InstitutionID,
		FacultyID:      c.FacultyID,
		ProgramID:      c.ProgramID,
		Angkatan:       c.Angkatan,
		AvailableRoles: c.AvailableRoles,
	}
	if c.Impersonating && c.OriginalAdminID != nil {
		imp := &model.Impersonation{OriginalAdminID: *c.OriginalAdminID}
		if c.ExpiresAt != nil {
			imp.ExpiresAt = c.ExpiresAt.Time
		}
		p.Impersonation = imp
	}
	return p
}

// TokenIssuer menerbitkan dan memverifikasi token HS256.
type TokenIssuer struct {
	secret           []byte
	ttl              time.Duration
	impersonationTTL time.Duration
	restoreTTL       time.Duration
	now              func() time.Time
}

func NewTokenIssuer(secret string, ttl, impersonationTTL, restoreTTL time.Duration) (*TokenIssuer, error) {
	if secret == "" {
		return nil, ErrEmptyJWTKey
	}
	return &TokenIssuer{
		secret:           []byte(secret),
		ttl:              ttl,
		impersonationTTL: impersonationTTL,
		restoreTTL:       restoreTTL,
		now:              time.Now,
	}, nil
}

// Issued adalah token beserta waktu kedaluwarsanya.
type Issued struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
}

func claimsFor(p model.Principal) Claims {
	c := Claims{
		UserID:         p.ID,
		Role:           p.PrimaryRole,
		ActiveRole:     p.ActiveRole,
		ProgramID:      p.ProgramID,
		FacultyID:      p.FacultyID,
		InstitutionID:  p.InstitutionID,
		Angkatan:       p.Angkatan,
		AvailableRoles: p.AvailableRoles,
	}
	if p.Impersonation != nil {
		admin := p.Impersonation.OriginalAdminID
		c.Impersonating = true
		c.OriginalAdminID = &admin
	}
	return c
}

func (t *TokenIssuer) sign(c Claims, ttl time.Duration) (Issued, error) {
	now := t.now()
	exp := now.Add(ttl)
	c.RegisteredClaims = jwt.RegisteredClaims{
		ExpiresAt: jwt.NewNumericDate(exp),
		IssuedAt:  jwt.NewNumericDate(now),
		Subject:   c.UserID.String(),
		ID:        uuid.NewString(),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, c).SignedString(t.secret)
	if err != nil {
		return Issued{}, err
	}
	return Issued{Token: token, ExpiresAt: exp}, nil
}

// IssueAccess menerbitkan access token standar (default 24 jam).
func (t *TokenIssuer) IssueAccess(p model.Principal) (Issued, error) {
	c := claimsFor(p)
	c.Purpose = PurposeAccess
	ttl := t.ttl
	if c.Impersonating {
		ttl = t.impersonationTTL
	}
	return t.sign(c, ttl)
}

// IssueRestore menerbitkan token untuk kembali ke identitas superadmin asli.
func (t *TokenIssuer) IssueRestore(adminID uuid.UUID) (Issued, error) {
	c := Claims{UserID: adminID, Role: model.RoleSuperAdmin, Purpose: PurposeRestore}
	return t.sign(c, t.restoreTTL)
}

// Parse memverifikasi signature, expiry dan purpose token.
func (t *TokenIssuer) Parse(tokenString, purpose string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(
		tokenString,
		&Claims{},
		func(tok *jwt.Token) (interface{}, error) {
			// verifikasi signing method HMAC
			if _, ok := tok.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, jwt.ErrSignatureInvalid
			}
			return t.secret, nil
		},
		jwt.WithTimeFunc(t.now),
	)
	if err != nil {
		return nil, err
	}
	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, ErrInvalidToken
	}
	if claims.Purpose != purpose {
		return nil, ErrTokenPurpose
	}
	return claims, nil
}
