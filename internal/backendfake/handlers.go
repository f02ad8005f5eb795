package backendfake

import (
	"encoding/json"
	"net/http"
	"net/mail"
	"strconv"

	jwtlib "github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/jrsteele09/course-session-gateway/cookies"
)

type credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name"`
}

func (b *Backend) signIn(w http.ResponseWriter, r *http.Request) {
	var creds credentials
	if err := json.NewDecoder(r.Body).Decode(&creds); err != nil {
		writeMessage(w, http.StatusBadRequest, "Malformed body")
		return
	}

	b.mu.Lock()
	u, ok := b.users[creds.Email]
	b.mu.Unlock()
	if !ok || u.Password != creds.Password {
		writeMessage(w, http.StatusUnauthorized, "Invalid email or password")
		return
	}

	b.issueTokens(w, u)
	writeJSON(w, http.StatusOK, map[string]string{"id": u.ID})
}

func (b *Backend) signUp(w http.ResponseWriter, r *http.Request) {
	var creds credentials
	if err := json.NewDecoder(r.Body).Decode(&creds); err != nil {
		writeMessage(w, http.StatusBadRequest, "Malformed body")
		return
	}
	if _, err := mail.ParseAddress(creds.Email); err != nil {
		writeMessage(w, http.StatusBadRequest, []string{"email must be an email"})
		return
	}

	b.mu.Lock()
	_, exists := b.users[creds.Email]
	b.mu.Unlock()
	if exists {
		writeMessage(w, http.StatusConflict, "Email already registered")
		return
	}

	u := User{ID: uuid.NewString(), Email: creds.Email, Name: creds.Name, Password: creds.Password}
	b.AddUser(u)
	writeJSON(w, http.StatusCreated, map[string]string{"id": u.ID, "email": u.Email, "name": u.Name})
}

func (b *Backend) refresh(w http.ResponseWriter, r *http.Request) {
	b.mu.Lock()
	status, noCookies := b.refreshStatus, b.refreshNoCookies
	b.mu.Unlock()
	if status != 0 {
		writeMessage(w, status, "Refresh unavailable")
		return
	}

	c, err := r.Cookie(cookies.RefreshTokenName)
	if err != nil {
		writeMessage(w, http.StatusUnauthorized, "Missing refresh token")
		return
	}

	b.mu.Lock()
	userID, ok := b.refreshTokens[c.Value]
	delete(b.refreshTokens, c.Value) // rotated
	b.mu.Unlock()
	if !ok {
		writeMessage(w, http.StatusUnauthorized, "Invalid refresh token")
		return
	}

	if noCookies {
		w.WriteHeader(http.StatusOK)
		return
	}
	b.issueTokens(w, User{ID: userID, Role: "STUDENT"})
	w.WriteHeader(http.StatusOK)
}

func (b *Backend) signOut(w http.ResponseWriter, r *http.Request) {
	b.mu.Lock()
	status := b.signOutStatus
	b.mu.Unlock()
	if status != 0 {
		writeMessage(w, status, "Sign out failed")
		return
	}
	if c, err := r.Cookie(cookies.RefreshTokenName); err == nil {
		b.mu.Lock()
		delete(b.refreshTokens, c.Value)
		b.mu.Unlock()
	}
	w.WriteHeader(http.StatusNoContent)
}

// protected rejects requests without a valid, correctly signed access cookie
func (b *Backend) protected(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		b.mu.Lock()
		reject := b.alwaysReject
		b.mu.Unlock()
		if reject {
			writeMessage(w, http.StatusUnauthorized, "Unauthorized")
			return
		}
		c, err := r.Cookie(cookies.AccessTokenName)
		if err != nil {
			writeMessage(w, http.StatusUnauthorized, "Unauthorized")
			return
		}
		_, err = jwtlib.Parse(c.Value, func(*jwtlib.Token) (any, error) {
			return []byte(Secret), nil
		}, jwtlib.WithValidMethods([]string{"HS256"}))
		if err != nil {
			writeMessage(w, http.StatusUnauthorized, "Unauthorized")
			return
		}
		next(w, r)
	}
}

func (b *Backend) categories(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, b.Categories)
}

func (b *Backend) courses(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	page, err := strconv.Atoi(q.Get("page"))
	if err != nil {
		page = 1
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"items": []map[string]any{
			{"id": "course-1", "title": "Go in Practice", "slug": "go-in-practice", "categoryId": q.Get("category"), "description": q.Get("q")},
		},
		"total": 1,
		"page":  page,
	})
}

func (b *Backend) course(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id != "course-1" {
		writeMessage(w, http.StatusNotFound, "Course not found")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"id": id, "title": "Go in Practice", "slug": "go-in-practice"})
}

func (b *Backend) text(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte("plain body"))
}

func (b *Backend) noContent(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusNoContent)
}
