package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"DoctorPortal/models"
	"DoctorPortal/store"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const (
	ServicesKey     = "service:all"
	ServiceNamesKey = "service:names"
	UserKey         = "user:"
	// UserGenKey counts writes per user; fills carry the count they read.
	UserGenKey = "user-gen:"
)

var errStale = errors.New("cache fill is stale")

// Cache is a JSON value cache over Redis. Failures are logged and treated
// as misses so the database stays the source of truth.
type Cache struct {
	rdb *redis.Client
	ttl time.Duration
	log *zap.Logger
}

func New(rdb *redis.Client, ttl time.Duration, log *zap.Logger) *Cache {
	if log == nil {
		log = zap.NewNop()
	}
	return &Cache{rdb: rdb, ttl: ttl, log: log}
}

func (c *Cache) get(ctx context.Context, key string, out interface{}) bool {
	raw, err := c.rdb.Get(ctx, key).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			c.log.Warn("cache get failed", zap.String("key", key), zap.Error(err))
		}
		return false
	}
	if err := json.Unmarshal(raw, out); err != nil {
		c.log.Warn("cache decode failed", zap.String("key", key), zap.Error(err))
		return false
	}
	return true
}

func (c *Cache) set(ctx context.Context, key string, v interface{}) {
	raw, err := json.Marshal(v)
	if err != nil {
		c.log.Warn("cache encode failed", zap.String("key", key), zap.Error(err))
		return
	}
	if err := c.rdb.Set(ctx, key, raw, c.ttl).Err(); err != nil {
		c.log.Warn("cache set failed", zap.String("key", key), zap.Error(err))
	}
}

func (c *Cache) del(ctx context.Context, keys ...string) {
	if err := c.rdb.Del(ctx, keys...).Err(); err != nil {
		c.log.Warn("cache delete failed", zap.Strings("keys", keys), zap.Error(err))
	}
}

func (c *Cache) generation(ctx context.Context, genKey string) (int64, bool) {
	n, err := c.rdb.Get(ctx, genKey).Int64()
	if err != nil && !errors.Is(err, redis.Nil) {
		c.log.Warn("cache generation read failed", zap.String("key", genKey), zap.Error(err))
		return 0, false
	}
	return n, true
}

// setIfGeneration stores v under key only while genKey still holds gen.
func (c *Cache) setIfGeneration(ctx context.Context, key, genKey string, gen int64, v interface{}) {
	raw, err := json.Marshal(v)
	if err != nil {
		c.log.Warn("cache encode failed", zap.String("key", key), zap.Error(err))
		return
	}
	err = c.rdb.Watch(ctx, func(tx *redis.Tx) error {
		cur, err := tx.Get(ctx, genKey).Int64()
		if err != nil && !errors.Is(err, redis.Nil) {
			return err
		}
		if cur != gen {
			return errStale
		}
		_, err = tx.TxPipelined(ctx, func(p redis.Pipeliner) error {
			p.Set(ctx, key, raw, c.ttl)
			return nil
		})
		return err
	}, genKey)
	if err != nil && !errors.Is(err, errStale) && !errors.Is(err, redis.TxFailedErr) {
		c.log.Warn("cache set failed", zap.String("key", key), zap.Error(err))
	}
}

// invalidate bumps genKey and drops key in one transaction.
func (c *Cache) invalidate(ctx context.Context, key, genKey string) {
	_, err := c.rdb.TxPipelined(ctx, func(p redis.Pipeliner) error {
		p.Incr(ctx, genKey)
		p.Del(ctx, key)
		return nil
	})
	if err != nil {
		c.log.Warn("cache invalidate failed", zap.String("key", key), zap.Error(err))
	}
}

// Wrap returns s with its service catalog and user lookups read through c.
func (c *Cache) Wrap(s *store.Store) *store.Store {
	out := *s
	out.Services = services{Services: s.Services, c: c}
	out.Users = users{Users: s.Users, c: c}
	return &out
}

type services struct {
	store.Services
	c *Cache
}

func (s services) List(ctx context.Context) ([]models.Service, error) {
	var cached []models.Service
	if s.c.get(ctx, ServicesKey, &cached) {
		return cached, nil
	}
	list, err := s.Services.List(ctx)
	if err != nil {
		return nil, err
	}
	s.c.set(ctx, ServicesKey, list)
	return list, nil
}

func (s services) ListNames(ctx context.Context) ([]models.ServiceSummary, error) {
	var cached []models.ServiceSummary
	if s.c.get(ctx, ServiceNamesKey, &cached) {
		return cached, nil
	}
	list, err := s.Services.ListNames(ctx)
	if err != nil {
		return nil, err
	}
	s.c.set(ctx, ServiceNamesKey, list)
	return list, nil
}

func (s services) Insert(ctx context.Context, svc models.Service) (models.InsertResult, error) {
	res, err := s.Services.Insert(ctx, svc)
	if err == nil {
		s.c.del(ctx, ServicesKey, ServiceNamesKey)
	}
	return res, err
}

type users struct {
	store.Users
	c *Cache
}

/*
* Serve from the cache when present
* Otherwise note the write generation, read the store
* Cache only existing users, and only if no write happened meanwhile
 */
func (u users) FindByEmail(ctx context.Context, email string) (models.User, error) {
	key, genKey := UserKey+email, UserGenKey+email
	var cached models.User
	if u.c.get(ctx, key, &cached) {
		return cached, nil
	}
	gen, ok := u.c.generation(ctx, genKey)
	usr, err := u.Users.FindByEmail(ctx, email)
	if err != nil || usr == nil {
		return usr, err
	}
	if ok {
		u.c.setIfGeneration(ctx, key, genKey, gen, usr)
	}
	return usr, nil
}

func (u users) Upsert(ctx context.Context, email string, fields map[string]interface{}) (models.UpdateResult, error) {
	res, err := u.Users.Upsert(ctx, email, fields)
	u.c.invalidate(ctx, UserKey+email, UserGenKey+email)
	return res, err
}

func (u users) SetRole(ctx context.Context, email, role string) (models.UpdateResult, error) {
	res, err := u.Users.SetRole(ctx, email, role)
	u.c.invalidate(ctx, UserKey+email, UserGenKey+email)
	return res, err
}
