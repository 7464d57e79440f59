package repository

import (
	"context"
	"sort"
	"sync"

	"party-photo-backend/internal/models"
)

// In-memory repository implementations mirroring the Postgres ones,
// including ordering and set semantics. Used by service tests; error
// injection via ErrOnNextCall exercises failure paths.

type memoryBase struct {
	mu sync.Mutex

	// ErrOnNextCall is returned by the next repository call and then
	// cleared.
	ErrOnNextCall error
}

func (b *memoryBase) checkErr() error {
	err := b.ErrOnNextCall
	b.ErrOnNextCall = nil
	return err
}

// MemoryUserRepository is an in-memory UserRepo.
type MemoryUserRepository struct {
	memoryBase
	users map[string]*models.User
}

// NewMemoryUserRepository creates an empty in-memory user repository
func NewMemoryUserRepository() *MemoryUserRepository {
	return &MemoryUserRepository{users: make(map[string]*models.User)}
}

func (r *MemoryUserRepository) Create(ctx context.Context, user *models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.checkErr(); err != nil {
		return err
	}
	u := *user
	r.users[user.ID] = &u
	return nil
}

func (r *MemoryUserRepository) GetByID(ctx context.Context, id string) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.checkErr(); err != nil {
		return nil, err
	}
	if user, ok := r.users[id]; ok {
		u := *user
		return &u, nil
	}
	return nil, models.ErrNotFound
}

func (r *MemoryUserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.checkErr(); err != nil {
		return nil, err
	}
	for _, user := range r.users {
		if user.Email == email {
			u := *user
			return &u, nil
		}
	}
	return nil, models.ErrNotFound
}

func (r *MemoryUserRepository) GetBySubject(ctx context.Context, provider, subject string) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.checkErr(); err != nil {
		return nil, err
	}
	for _, user := range r.users {
		if user.Provider == provider && user.Subject != nil && *user.Subject == subject {
			u := *user
			return &u, nil
		}
	}
	return nil, models.ErrNotFound
}

func (r *MemoryUserRepository) UpdateProfile(ctx context.Context, userID, name string, avatar *string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.checkErr(); err != nil {
		return err
	}
	user, ok := r.users[userID]
	if !ok {
		return models.ErrNotFound
	}
	user.Name = name
	user.Avatar = avatar
	return nil
}

func (r *MemoryUserRepository) UpdatePushToken(ctx context.Context, userID string, pushToken *string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.checkErr(); err != nil {
		return err
	}
	user, ok := r.users[userID]
	if !ok {
		return models.ErrNotFound
	}
	user.PushToken = pushToken
	return nil
}

// MemoryEventRepository is an in-memory EventRepo.
type MemoryEventRepository struct {
	memoryBase
	events map[string]*models.Event
}

// NewMemoryEventRepository creates an empty in-memory event repository
func NewMemoryEventRepository() *MemoryEventRepository {
	return &MemoryEventRepository{events: make(map[string]*models.Event)}
}

func (r *MemoryEventRepository) Create(ctx context.Context, event *models.Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.checkErr(); err != nil {
		return err
	}
	e := *event
	r.events[event.ID] = &e
	return nil
}

func (r *MemoryEventRepository) GetByID(ctx context.Context, id string) (*models.Event, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.checkErr(); err != nil {
		return nil, err
	}
	if event, ok := r.events[id]; ok {
		e := *event
		return &e, nil
	}
	return nil, models.ErrNotFound
}

func (r *MemoryEventRepository) GetByInviteCode(ctx context.Context, code string) (*models.Event, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.checkErr(); err != nil {
		return nil, err
	}
	for _, event := range r.events {
		if event.InviteCode == code && event.IsActive {
			e := *event
			return &e, nil
		}
	}
	return nil, models.ErrNotFound
}

func (r *MemoryEventRepository) GetByCreator(ctx context.Context, userID string) ([]*models.Event, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.checkErr(); err != nil {
		return nil, err
	}
	var events []*models.Event
	for _, event := range r.events {
		if event.CreatedBy == userID {
			e := *event
			events = append(events, &e)
		}
	}
	sortEventsNewestFirst(events)
	return events, nil
}

func (r *MemoryEventRepository) GetAllActive(ctx context.Context) ([]*models.Event, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.checkErr(); err != nil {
		return nil, err
	}
	var events []*models.Event
	for _, event := range r.events {
		if event.IsActive {
			e := *event
			events = append(events, &e)
		}
	}
	sortEventsNewestFirst(events)
	return events, nil
}

func (r *MemoryEventRepository) Update(ctx context.Context, id string, update EventUpdate) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.checkErr(); err != nil {
		return err
	}
	event, ok := r.events[id]
	if !ok {
		return models.ErrNotFound
	}
	if update.Name != nil {
		event.Name = *update.Name
	}
	if update.Description != nil {
		event.Description = *update.Description
	}
	if update.IsActive != nil {
		event.IsActive = *update.IsActive
	}
	return nil
}

func sortEventsNewestFirst(events []*models.Event) {
	sort.SliceStable(events, func(i, j int) bool {
		return events[i].CreatedAt.After(events[j].CreatedAt)
	})
}

// MemoryParticipationRepository is an in-memory ParticipationRepo enforcing
// the (user_id, event_id) unique constraint.
type MemoryParticipationRepository struct {
	memoryBase
	participations map[string]*models.Participation
}

// NewMemoryParticipationRepository creates an empty in-memory participation
// repository
func NewMemoryParticipationRepository() *MemoryParticipationRepository {
	return &MemoryParticipationRepository{participations: make(map[string]*models.Participation)}
}

func (r *MemoryParticipationRepository) Create(ctx context.Context, p *models.Participation) (*models.Participation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.checkErr(); err != nil {
		return nil, err
	}
	for _, existing := range r.participations {
		if existing.UserID == p.UserID && existing.EventID == p.EventID {
			e := *existing
			return &e, nil
		}
	}
	stored := *p
	r.participations[p.ID] = &stored
	result := stored
	return &result, nil
}

func (r *MemoryParticipationRepository) GetByID(ctx context.Context, id string) (*models.Participation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.checkErr(); err != nil {
		return nil, err
	}
	if p, ok := r.participations[id]; ok {
		result := *p
		return &result, nil
	}
	return nil, models.ErrNotFound
}

func (r *MemoryParticipationRepository) GetByUserAndEvent(ctx context.Context, userID, eventID string) (*models.Participation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.checkErr(); err != nil {
		return nil, err
	}
	for _, p := range r.participations {
		if p.UserID == userID && p.EventID == eventID {
			result := *p
			return &result, nil
		}
	}
	return nil, models.ErrNotFound
}

func (r *MemoryParticipationRepository) GetByUser(ctx context.Context, userID string) ([]*models.Participation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.checkErr(); err != nil {
		return nil, err
	}
	var participations []*models.Participation
	for _, p := range r.participations {
		if p.UserID == userID {
			result := *p
			participations = append(participations, &result)
		}
	}
	sort.SliceStable(participations, func(i, j int) bool {
		return participations[i].JoinedAt.After(participations[j].JoinedAt)
	})
	return participations, nil
}

func (r *MemoryParticipationRepository) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.checkErr(); err != nil {
		return err
	}
	if _, ok := r.participations[id]; !ok {
		return models.ErrNotFound
	}
	delete(r.participations, id)
	return nil
}

func (r *MemoryParticipationRepository) UpdateEventData(ctx context.Context, eventID, eventName, eventInviteCode string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.checkErr(); err != nil {
		return 0, err
	}
	var patched int64
	for _, p := range r.participations {
		if p.EventID == eventID {
			p.EventName = eventName
			p.EventInviteCode = eventInviteCode
			patched++
		}
	}
	return patched, nil
}

// MemoryImageRepository is an in-memory ImageRepo with the same set
// semantics as the JSONB/array columns.
type MemoryImageRepository struct {
	memoryBase
	images map[string]*models.Image
}

// NewMemoryImageRepository creates an empty in-memory image repository
func NewMemoryImageRepository() *MemoryImageRepository {
	return &MemoryImageRepository{images: make(map[string]*models.Image)}
}

func (r *MemoryImageRepository) Create(ctx context.Context, image *models.Image) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.checkErr(); err != nil {
		return err
	}
	stored := *image
	stored.Comments = append([]models.Comment(nil), image.Comments...)
	stored.LikedBy = append([]string(nil), image.LikedBy...)
	r.images[image.ID] = &stored
	return nil
}

func (r *MemoryImageRepository) GetByID(ctx context.Context, id string) (*models.Image, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.checkErr(); err != nil {
		return nil, err
	}
	image, ok := r.images[id]
	if !ok {
		return nil, models.ErrNotFound
	}
	return copyImage(image), nil
}

func (r *MemoryImageRepository) List(ctx context.Context, eventID *string) ([]*models.Image, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.checkErr(); err != nil {
		return nil, err
	}
	var images []*models.Image
	for _, image := range r.images {
		if eventID != nil && (image.EventID == nil || *image.EventID != *eventID) {
			continue
		}
		images = append(images, copyImage(image))
	}
	sort.SliceStable(images, func(i, j int) bool {
		return images[i].UploadedAt.After(images[j].UploadedAt)
	})
	return images, nil
}

func (r *MemoryImageRepository) AppendComment(ctx context.Context, imageID string, comment models.Comment) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.checkErr(); err != nil {
		return err
	}
	image, ok := r.images[imageID]
	if !ok {
		return models.ErrNotFound
	}
	for _, existing := range image.Comments {
		if sameComment(existing, comment) {
			return nil
		}
	}
	image.Comments = append(image.Comments, comment)
	return nil
}

func (r *MemoryImageRepository) AddLike(ctx context.Context, imageID, userID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.checkErr(); err != nil {
		return err
	}
	image, ok := r.images[imageID]
	if !ok {
		return models.ErrNotFound
	}
	for _, id := range image.LikedBy {
		if id == userID {
			return nil
		}
	}
	image.LikedBy = append(image.LikedBy, userID)
	return nil
}

func (r *MemoryImageRepository) RemoveLike(ctx context.Context, imageID, userID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.checkErr(); err != nil {
		return err
	}
	image, ok := r.images[imageID]
	if !ok {
		return models.ErrNotFound
	}
	kept := image.LikedBy[:0]
	for _, id := range image.LikedBy {
		if id != userID {
			kept = append(kept, id)
		}
	}
	image.LikedBy = kept
	return nil
}

func (r *MemoryImageRepository) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.checkErr(); err != nil {
		return err
	}
	if _, ok := r.images[id]; !ok {
		return models.ErrNotFound
	}
	delete(r.images, id)
	return nil
}

func copyImage(image *models.Image) *models.Image {
	result := *image
	result.Comments = append([]models.Comment(nil), image.Comments...)
	if result.Comments == nil {
		result.Comments = []models.Comment{}
	}
	result.LikedBy = append([]string(nil), image.LikedBy...)
	if result.LikedBy == nil {
		result.LikedBy = []string{}
	}
	result.Likes = len(result.LikedBy)
	return &result
}

func sameComment(a, b models.Comment) bool {
	if a.ID != b.ID || a.Content != b.Content || a.UserID != b.UserID ||
		a.UserName != b.UserName || !a.CreatedAt.Equal(b.CreatedAt) {
		return false
	}
	if a.UserAvatar == nil || b.UserAvatar == nil {
		return a.UserAvatar == b.UserAvatar
	}
	return *a.UserAvatar == *b.UserAvatar
}

// MemoryNotificationRepository is an in-memory NotificationRepo.
type MemoryNotificationRepository struct {
	memoryBase
	notifications map[string]*memoryNotification
}

type memoryNotification struct {
	models.Notification
	deleted bool
}

// NewMemoryNotificationRepository creates an empty in-memory notification
// repository
func NewMemoryNotificationRepository() *MemoryNotificationRepository {
	return &MemoryNotificationRepository{notifications: make(map[string]*memoryNotification)}
}

func (r *MemoryNotificationRepository) Create(ctx context.Context, n *models.Notification) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.checkErr(); err != nil {
		return err
	}
	r.notifications[n.ID] = &memoryNotification{Notification: *n}
	return nil
}

func (r *MemoryNotificationRepository) GetByRecipient(ctx context.Context, recipientID string, limit int) ([]*models.Notification, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.checkErr(); err != nil {
		return nil, err
	}
	var notifications []*models.Notification
	for _, n := range r.notifications {
		if n.RecipientID == recipientID && !n.deleted {
			result := n.Notification
			notifications = append(notifications, &result)
		}
	}
	sort.SliceStable(notifications, func(i, j int) bool {
		return notifications[i].Timestamp.After(notifications[j].Timestamp)
	})
	if limit > 0 && len(notifications) > limit {
		notifications = notifications[:limit]
	}
	return notifications, nil
}

func (r *MemoryNotificationRepository) CountUnread(ctx context.Context, recipientID string) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.checkErr(); err != nil {
		return 0, err
	}
	count := 0
	for _, n := range r.notifications {
		if n.RecipientID == recipientID && !n.Read && !n.deleted {
			count++
		}
	}
	return count, nil
}

func (r *MemoryNotificationRepository) MarkRead(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.checkErr(); err != nil {
		return err
	}
	n, ok := r.notifications[id]
	if !ok {
		return models.ErrNotFound
	}
	n.Read = true
	return nil
}

func (r *MemoryNotificationRepository) MarkAllRead(ctx context.Context, recipientID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.checkErr(); err != nil {
		return err
	}
	for _, n := range r.notifications {
		if n.RecipientID == recipientID {
			n.Read = true
		}
	}
	return nil
}

func (r *MemoryNotificationRepository) SoftDelete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.checkErr(); err != nil {
		return err
	}
	n, ok := r.notifications[id]
	if !ok {
		return models.ErrNotFound
	}
	n.deleted = true
	return nil
}

func (r *MemoryNotificationRepository) SoftDeleteAll(ctx context.Context, recipientID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.checkErr(); err != nil {
		return err
	}
	for _, n := range r.notifications {
		if n.RecipientID == recipientID {
			n.deleted = true
		}
	}
	return nil
}
