package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"

	"github.com/taskhive/task-service/internal/apperrors"
	"github.com/taskhive/task-service/internal/cache"
	"github.com/taskhive/task-service/internal/models"
	"github.com/taskhive/task-service/internal/token"
)

// writeTimeout bounds a store write and the cache invalidation that
// follows it, independent of the caller's deadline.
const writeTimeout = 5 * time.Second

// Store is the persistence contract the service orchestrates against.
// Absent rows surface as apperrors.CodeNotFound, never as raw driver
// errors.
type Store interface {
	CreateUser(ctx context.Context, user *models.User) error
	FindUserByEmail(ctx context.Context, email string) (*models.User, error)
	CreateTask(ctx context.Context, task *models.Task) error
	FindTaskByID(ctx context.Context, id string) (*models.Task, error)
	FindTasksByUser(ctx context.Context, userID string) ([]models.Task, error)
	UpdateTask(ctx context.Context, task *models.Task) error
	DeleteTask(ctx context.Context, id string) error
	Ping(ctx context.Context) error
}

// Notifier sends out-of-band user notifications.
type Notifier interface {
	SendWelcome(to string) error
}

// Service handles business logic: the credential gate, task ownership
// checks, and cache orchestration around the task store.
type Service struct {
	store    Store
	cache    cache.Cache
	tokens   *token.Manager
	notifier Notifier
	log      *logrus.Logger
	cacheTTL time.Duration
}

// NewService initializes a new service. notifier may be nil to disable
// sign-up emails.
func NewService(store Store, c cache.Cache, tokens *token.Manager, notifier Notifier, log *logrus.Logger, cacheTTL time.Duration) *Service {
	return &Service{
		store:    store,
		cache:    c,
		tokens:   tokens,
		notifier: notifier,
		log:      log,
		cacheTTL: cacheTTL,
	}
}

// SignUp creates a new user with a hashed password
func (s *Service) SignUp(ctx context.Context, email, password string) (*models.User, error) {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return nil, apperrors.New(apperrors.CodeValidation, "email and password are required")
	}

	if _, err := s.store.FindUserByEmail(ctx, email); err == nil {
		return nil, apperrors.New(apperrors.CodeConflict, "user already exists")
	} else if apperrors.CodeOf(err) != apperrors.CodeNotFound {
		return nil, err
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &models.User{
		Email:        email,
		PasswordHash: string(hashed),
	}
	if err := s.store.CreateUser(ctx, user); err != nil {
		return nil, err
	}

	if s.notifier != nil {
		go func() {
			if err := s.notifier.SendWelcome(user.Email); err != nil {
				s.log.Warnf("Failed to send welcome email to %s: %v", user.Email, err)
			}
		}()
	}

	s.log.Infof("User registered: %s", user.Email)
	return user, nil
}

// SignIn authenticates a user and returns a session token
func (s *Service) SignIn(ctx context.Context, email, password string) (string, *models.User, error) {
	user, err := s.store.FindUserByEmail(ctx, strings.TrimSpace(email))
	if err != nil {
		return "", nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return "", nil, apperrors.New(apperrors.CodeUnauthorized, "invalid credentials")
	}

	tokenString, err := s.tokens.Issue(user.ID, user.Email)
	if err != nil {
		return "", nil, err
	}

	s.log.Infof("User logged in: %s", user.Email)
	return tokenString, user, nil
}

// ListTasks returns the caller's tasks, served from the cache when a
// fresh entry exists and repopulating it from the store otherwise.
func (s *Service) ListTasks(ctx context.Context, userID string) ([]models.Task, error) {
	key := cache.TasksKey(userID)
	cached, err := s.cache.Get(ctx, key)
	if err == nil {
		var tasks []models.Task
		if err := json.Unmarshal([]byte(cached), &tasks); err == nil {
			return tasks, nil
		}
		s.log.Warnf("Corrupt cache entry %s, refetching: %v", key, err)
	} else if !errors.Is(err, cache.ErrMiss) {
		// The store is the authority; a broken cache degrades to
		// store-only reads instead of failing the request.
		s.log.Warnf("Cache get failed for %s, falling back to store: %v", key, err)
	}

	tasks, err := s.store.FindTasksByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	if payload, err := json.Marshal(tasks); err == nil {
		if err := s.cache.Set(ctx, key, string(payload), s.cacheTTL); err != nil {
			s.log.Warnf("Cache set failed for %s: %v", key, err)
		}
	}
	return tasks, nil
}

// CreateTask creates a task owned by the caller and invalidates the
// caller's cached task list.
func (s *Service) CreateTask(ctx context.Context, userID, title, description string) (*models.Task, error) {
	title = strings.TrimSpace(title)
	description = strings.TrimSpace(description)
	if title == "" || description == "" {
		return nil, apperrors.New(apperrors.CodeValidation, "title and description are required")
	}

	task := &models.Task{
		Title:       title,
		Description: description,
		UserID:      userID,
	}

	writeCtx, cancel := s.writeContext(ctx)
	defer cancel()
	if err := s.store.CreateTask(writeCtx, task); err != nil {
		return nil, err
	}
	s.invalidate(writeCtx, userID)

	s.log.Infof("Task %s created for user %s", task.ID, userID)
	return task, nil
}

// GetTask returns a single task after an ownership check
func (s *Service) GetTask(ctx context.Context, userID, taskID string) (*models.Task, error) {
	return s.authorize(ctx, userID, taskID)
}

// UpdateTask applies a partial patch to a task owned by the caller and
// invalidates the caller's cached task list.
func (s *Service) UpdateTask(ctx context.Context, userID, taskID string, patch models.TaskPatch) (*models.Task, error) {
	if patch.Title == nil && patch.Description == nil && patch.Completed == nil {
		return nil, apperrors.New(apperrors.CodeValidation, "no updatable fields provided")
	}

	task, err := s.authorize(ctx, userID, taskID)
	if err != nil {
		return nil, err
	}

	if patch.Title != nil {
		title := strings.TrimSpace(*patch.Title)
		if title == "" {
			return nil, apperrors.New(apperrors.CodeValidation, "title must not be empty")
		}
		task.Title = title
	}
	if patch.Description != nil {
		task.Description = strings.TrimSpace(*patch.Description)
	}
	if patch.Completed != nil {
		task.Completed = *patch.Completed
	}

	writeCtx, cancel := s.writeContext(ctx)
	defer cancel()
	if err := s.store.UpdateTask(writeCtx, task); err != nil {
		return nil, err
	}
	s.invalidate(writeCtx, userID)

	s.log.Infof("Task %s updated for user %s", task.ID, userID)
	return task, nil
}

// DeleteTask removes a task owned by the caller and invalidates the
// caller's cached task list.
func (s *Service) DeleteTask(ctx context.Context, userID, taskID string) error {
	task, err := s.authorize(ctx, userID, taskID)
	if err != nil {
		return err
	}

	writeCtx, cancel := s.writeContext(ctx)
	defer cancel()
	if err := s.store.DeleteTask(writeCtx, task.ID); err != nil {
		return err
	}
	s.invalidate(writeCtx, userID)

	s.log.Infof("Task %s deleted for user %s", task.ID, userID)
	return nil
}

// Health reports whether the task store is reachable
func (s *Service) Health(ctx context.Context) error {
	return s.store.Ping(ctx)
}

// authorize loads a task and enforces that the caller owns it.
func (s *Service) authorize(ctx context.Context, userID, taskID string) (*models.Task, error) {
	task, err := s.store.FindTaskByID(ctx, taskID)
	if err != nil {
		return nil, err
	}
	if task.UserID != userID {
		return nil, apperrors.New(apperrors.CodeForbidden, "task belongs to another user")
	}
	return task, nil
}

// writeContext detaches from the caller's cancellation so a client
// disconnect cannot abort a write mid-flight and leave a committed row
// behind a stale cache entry.
func (s *Service) writeContext(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.WithoutCancel(ctx), writeTimeout)
}

// invalidate drops the user's cached task list. Runs immediately after
// the store write commits; a cache failure is absorbed so the write
// still succeeds.
func (s *Service) invalidate(ctx context.Context, userID string) {
	key := cache.TasksKey(userID)
	if err := s.cache.Delete(ctx, key); err != nil {
		s.log.Warnf("Cache invalidation failed for %s: %v", key, err)
	}
}
