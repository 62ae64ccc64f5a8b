package mockapi

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"github.com/intellidetect/dashboard/pkg/domain"
)

type contextKey string

const userIDKey contextKey = "user_id"

// claims is the payload of an issued token.
type claims struct {
	Username string `json:"uname"`
	jwt.RegisteredClaims
}

// issueToken signs a token for u.
func (s *Server) issueToken(u domain.User) (string, error) {
	now := s.now()
	c := claims{
		Username: u.Username,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatInt(u.ID, 10),
			Issuer:    "intellidetect-mock",
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.tokenTTL)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, c)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// parseToken validates a bearer token and returns the user ID it names.
func (s *Server) parseToken(raw string) (int64, error) {
	var c claims
	_, err := jwt.ParseWithClaims(raw, &c, func(t *jwt.Token) (any, error) {
		return s.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithTimeFunc(s.now))
	if err != nil {
		return 0, err
	}
	id, err := strconv.ParseInt(c.Subject, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("bad subject: %w", err)
	}
	return id, nil
}

// authenticate rejects requests without a valid token for an existing account.
func (s *Server) authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw, ok := bearerToken(r)
		if !ok {
			writeFail(w, http.StatusUnauthorized, codeUnauthorized, "login required")
			return
		}
		id, err := s.parseToken(raw)
		if err != nil {
			msg := "invalid token"
			if errors.Is(err, jwt.ErrTokenExpired) {
				msg = "token expired"
			}
			writeFail(w, http.StatusUnauthorized, codeUnauthorized, msg)
			return
		}
		s.mu.Lock()
		_, exists := s.accounts[id]
		s.mu.Unlock()
		if !exists {
			writeFail(w, http.StatusUnauthorized, codeUnauthorized, "account no longer exists")
			return
		}
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), userIDKey, id)))
	})
}

func bearerToken(r *http.Request) (string, bool) {
	parts := strings.SplitN(r.Header.Get("Authorization"), " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", false
	}
	tok := strings.TrimSpace(parts[1])
	return tok, tok != ""
}

func currentUserID(r *http.Request) int64 {
	id, _ := r.Context().Value(userIDKey).(int64) //nolint:errcheck // set by authenticate
	return id
}

// AddUser creates an account directly, bypassing the HTTP layer.
func (s *Server) AddUser(reg domain.Registration) (domain.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.addUserLocked(reg)
}

func (s *Server) addUserLocked(reg domain.Registration) (domain.User, error) {
	if reg.Username == "" || reg.Password == "" {
		return domain.User{}, errors.New("username and password are required")
	}
	if s.findByUsernameLocked(reg.Username) != nil {
		return domain.User{}, fmt.Errorf("username %q is taken", reg.Username)
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(reg.Password), bcrypt.MinCost)
	if err != nil {
		return domain.User{}, fmt.Errorf("hash password: %w", err)
	}
	u := domain.User{
		ID:          s.allocID(),
		Username:    reg.Username,
		PhoneNumber: reg.PhoneNumber,
		Email:       reg.Email,
		CreateTime:  s.timestamp(),
	}
	s.accounts[u.ID] = &account{user: u, passwordHash: hash}
	return u, nil
}

func (s *Server) findByUsernameLocked(name string) *account {
	for _, a := range s.accounts {
		if a.user.Username == name {
			return a
		}
	}
	return nil
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var creds domain.Credentials
	if err := decodeBody(r, &creds); err != nil {
		writeFail(w, http.StatusBadRequest, codeBadRequest, "invalid request body")
		return
	}

	s.mu.Lock()
	acct := s.findByUsernameLocked(creds.Username)
	s.mu.Unlock()
	if acct == nil || bcrypt.CompareHashAndPassword(acct.passwordHash, []byte(creds.Password)) != nil {
		writeFail(w, http.StatusBadRequest, codeBadRequest, "wrong username or password")
		return
	}

	token, err := s.issueToken(acct.user)
	if err != nil {
		writeFail(w, http.StatusInternalServerError, http.StatusInternalServerError, "could not issue token")
		return
	}
	u := acct.user
	writeOK(w, domain.LoginResult{Token: token, User: &u})
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var reg domain.Registration
	if err := decodeBody(r, &reg); err != nil {
		writeFail(w, http.StatusBadRequest, codeBadRequest, "invalid request body")
		return
	}
	u, err := s.AddUser(reg)
	if err != nil {
		writeFail(w, http.StatusConflict, codeConflict, err.Error())
		return
	}
	writeOK(w, u)
}

func (s *Server) handleGetUser(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeFail(w, http.StatusBadRequest, codeBadRequest, "invalid id")
		return
	}
	s.mu.Lock()
	acct, ok := s.accounts[id]
	s.mu.Unlock()
	if !ok {
		writeFail(w, http.StatusNotFound, codeNotFound, "user not found")
		return
	}
	writeOK(w, acct.user)
}

func (s *Server) handleGetUserByUsername(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	acct := s.findByUsernameLocked(chi.URLParam(r, "username"))
	s.mu.Unlock()
	if acct == nil {
		writeFail(w, http.StatusNotFound, codeNotFound, "user not found")
		return
	}
	writeOK(w, acct.user)
}

func (s *Server) handleUpdateUser(w http.ResponseWriter, r *http.Request) {
	var in domain.User
	if err := decodeBody(r, &in); err != nil {
		writeFail(w, http.StatusBadRequest, codeBadRequest, "invalid request body")
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	acct := s.accounts[currentUserID(r)]
	if in.Username != "" && in.Username != acct.user.Username {
		if s.findByUsernameLocked(in.Username) != nil {
			writeFail(w, http.StatusConflict, codeConflict, "username is taken")
			return
		}
		acct.user.Username = in.Username
	}
	acct.user.Email = in.Email
	acct.user.PhoneNumber = in.PhoneNumber
	writeOK(w, acct.user)
}

func (s *Server) handleUpdatePassword(w http.ResponseWriter, r *http.Request) {
	var in domain.PasswordChange
	if err := decodeBody(r, &in); err != nil || in.NewPassword == "" {
		writeFail(w, http.StatusBadRequest, codeBadRequest, "invalid request body")
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	acct := s.accounts[currentUserID(r)]
	if bcrypt.CompareHashAndPassword(acct.passwordHash, []byte(in.OldPassword)) != nil {
		writeFail(w, http.StatusBadRequest, codeBadRequest, "old password is incorrect")
		return
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(in.NewPassword), bcrypt.MinCost)
	if err != nil {
		writeFail(w, http.StatusInternalServerError, http.StatusInternalServerError, "could not hash password")
		return
	}
	acct.passwordHash = hash
	writeOK(w, nil)
}

func (s *Server) handleDeleteUser(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	delete(s.accounts, currentUserID(r))
	s.mu.Unlock()
	writeOK(w, nil)
}

