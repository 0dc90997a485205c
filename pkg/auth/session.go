// Package auth resolves the staff principal (role and restaurant) for each
// request from a server-side session.
//
// Session keys should be 32 or 64 bytes for HMAC authentication and 16, 24
// or 32 bytes for AES encryption. Generate production keys with:
//
//	openssl rand -base64 32
package auth

import (
	"context"
	"encoding/base32"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/securecookie"
	"github.com/gorilla/sessions"
	"github.com/redis/go-redis/v9"
)

const (
	sessionKeyPrefix  = "dineqr_session:"
	defaultSessionTTL = 12 * time.Hour
)

// SessionOptions configures NewSessionStore.
type SessionOptions struct {
	AuthKey       []byte
	EncryptionKey []byte
	// TTL is both the cookie MaxAge and the idle expiry of the Redis hash.
	// Zero means 12h, one service shift.
	TTL time.Duration
	// Secure restricts the cookie to HTTPS.
	Secure bool
}

// RedisStore is a sessions.Store that keeps session values in a Redis hash
// under "dineqr_session:<id>". Only the signed and encrypted id travels in
// the cookie. Values must be strings; the principal is all a session holds.
// Every successful load slides the expiry forward.
type RedisStore struct {
	client  redis.Cmdable
	codecs  []securecookie.Codec
	ttl     time.Duration
	options sessions.Options
}

func NewSessionStore(client redis.Cmdable, opts SessionOptions) *RedisStore {
	ttl := opts.TTL
	if ttl <= 0 {
		ttl = defaultSessionTTL
	}
	return &RedisStore{
		client: client,
		codecs: securecookie.CodecsFromPairs(opts.AuthKey, opts.EncryptionKey),
		ttl:    ttl,
		options: sessions.Options{
			Path:     "/",
			MaxAge:   int(ttl / time.Second),
			HttpOnly: true,
			Secure:   opts.Secure,
			SameSite: http.SameSiteLaxMode,
		},
	}
}

// Get returns the request's cached session or loads it.
func (s *RedisStore) Get(r *http.Request, name string) (*sessions.Session, error) {
	return sessions.GetRegistry(r).Get(s, name)
}

// New loads the session named by the request cookie. A missing, tampered or
// expired cookie, or a hash that is gone from Redis, yields a fresh session
// and no error. Redis being unreachable is an error.
func (s *RedisStore) New(r *http.Request, name string) (*sessions.Session, error) {
	session := sessions.NewSession(s, name)
	opts := s.options
	session.Options = &opts
	session.IsNew = true

	c, err := r.Cookie(name)
	if err != nil {
		return session, nil
	}
	var id string
	if err := securecookie.DecodeMulti(name, c.Value, &id, s.codecs...); err != nil {
		return session, nil
	}

	values, err := s.load(r.Context(), id)
	if err != nil {
		return session, err
	}
	if len(values) == 0 {
		return session, nil
	}
	session.ID = id
	for k, v := range values {
		session.Values[k] = v
	}
	session.IsNew = false
	return session, nil
}

// Save writes the session hash and cookie. MaxAge < 0 deletes both.
func (s *RedisStore) Save(r *http.Request, w http.ResponseWriter, session *sessions.Session) error {
	ctx := r.Context()
	if session.Options.MaxAge < 0 {
		if session.ID != "" {
			if err := s.client.Del(ctx, sessionKeyPrefix+session.ID).Err(); err != nil {
				return fmt.Errorf("delete session: %w", err)
			}
		}
		http.SetCookie(w, sessions.NewCookie(session.Name(), "", session.Options))
		return nil
	}

	if session.ID == "" {
		session.ID = newSessionID()
	}
	fields, err := stringFields(session.Values)
	if err != nil {
		return err
	}
	if err := s.store(ctx, session.ID, fields); err != nil {
		return err
	}

	encoded, err := securecookie.EncodeMulti(session.Name(), session.ID, s.codecs...)
	if err != nil {
		return fmt.Errorf("encode session cookie: %w", err)
	}
	http.SetCookie(w, sessions.NewCookie(session.Name(), encoded, session.Options))
	return nil
}

func (s *RedisStore) store(ctx context.Context, id string, fields map[string]any) error {
	key := sessionKeyPrefix + id
	_, err := s.client.TxPipelined(ctx, func(p redis.Pipeliner) error {
		p.Del(ctx, key)
		if len(fields) > 0 {
			p.HSet(ctx, key, fields)
		}
		p.Expire(ctx, key, s.ttl)
		return nil
	})
	if err != nil {
		return fmt.Errorf("persist session: %w", err)
	}
	return nil
}

func (s *RedisStore) load(ctx context.Context, id string) (map[string]string, error) {
	key := sessionKeyPrefix + id
	var get *redis.MapStringStringCmd
	_, err := s.client.TxPipelined(ctx, func(p redis.Pipeliner) error {
		get = p.HGetAll(ctx, key)
		p.Expire(ctx, key, s.ttl)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("load session: %w", err)
	}
	return get.Val(), nil
}

func stringFields(values map[any]any) (map[string]any, error) {
	fields := make(map[string]any, len(values))
	for k, v := range values {
		ks, ok := k.(string)
		if !ok {
			return nil, fmt.Errorf("session key %v is not a string", k)
		}
		vs, ok := v.(string)
		if !ok {
			return nil, fmt.Errorf("session value for %q is %T, want string", ks, v)
		}
		fields[ks] = vs
	}
	return fields, nil
}

func newSessionID() string {
	return strings.TrimRight(base32.StdEncoding.EncodeToString(securecookie.GenerateRandomKey(32)), "=")
}
