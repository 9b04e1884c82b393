package service

import (
	"context"
	"sort"
	"time"

	"labelquest/internal/common"
	"labelquest/internal/domain/model"
	"labelquest/internal/domain/repository"
)

// In-memory fakes behind the repository interfaces. Sampling picks the first
// eligible item in insertion order, which keeps the exclusion and visibility
// semantics testable without a store.

type fakeUserRepo struct {
	users map[string]*model.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[string]*model.User)}
}

func (r *fakeUserRepo) add(user *model.User) {
	r.users[user.ID] = user
}

func (r *fakeUserRepo) Create(ctx context.Context, user *model.User) error {
	r.users[user.ID] = user
	return nil
}

func (r *fakeUserRepo) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	for _, user := range r.users {
		if user.Email == email {
			return user, nil
		}
	}
	return nil, common.ErrNotFound
}

func (r *fakeUserRepo) FindByUsername(ctx context.Context, username string) (*model.User, error) {
	for _, user := range r.users {
		if user.Username == username {
			return user, nil
		}
	}
	return nil, common.ErrNotFound
}

func (r *fakeUserRepo) FindByID(ctx context.Context, id string) (*model.User, error) {
	if user, ok := r.users[id]; ok {
		return user, nil
	}
	return nil, common.ErrNotFound
}

func (r *fakeUserRepo) ListAdminIDs(ctx context.Context) ([]string, error) {
	var ids []string
	for _, user := range r.users {
		if user.Role == model.RoleAdmin {
			ids = append(ids, user.ID)
		}
	}
	return ids, nil
}

func (r *fakeUserRepo) SetAdmin(ctx context.Context, id string, admin bool) error {
	user, ok := r.users[id]
	if !ok {
		return common.ErrNotFound
	}
	if admin {
		user.Role = model.RoleAdmin
	} else {
		user.Role = model.RoleUser
	}
	return nil
}

func (r *fakeUserRepo) SetLocked(ctx context.Context, id string, locked bool) error {
	user, ok := r.users[id]
	if !ok {
		return common.ErrNotFound
	}
	user.Locked = locked
	return nil
}

func (r *fakeUserRepo) ListAll(ctx context.Context) ([]model.User, error) {
	ids := make([]string, 0, len(r.users))
	for id := range r.users {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	users := make([]model.User, 0, len(ids))
	for _, id := range ids {
		users = append(users, *r.users[id])
	}
	return users, nil
}

type fakeStatsRepo struct {
	rows map[string]*model.UserStats
}

func newFakeStatsRepo() *fakeStatsRepo {
	return &fakeStatsRepo{rows: make(map[string]*model.UserStats)}
}

func (r *fakeStatsRepo) EnsureExists(ctx context.Context, userID string) error {
	if _, ok := r.rows[userID]; !ok {
		r.rows[userID] = &model.UserStats{
			UserID:      userID,
			ImagesLevel: 1, TagsLevel: 1, UploadLevel: 1, OverallLevel: 1,
		}
	}
	return nil
}

func (r *fakeStatsRepo) Save(ctx context.Context, stats *model.UserStats) error {
	saved := *stats
	saved.UpdatedAt = time.Now()
	r.rows[stats.UserID] = &saved
	return nil
}

func (r *fakeStatsRepo) byScore(limit int, excludeUserIDs []string) []model.UserStats {
	excluded := make(map[string]struct{}, len(excludeUserIDs))
	for _, id := range excludeUserIDs {
		excluded[id] = struct{}{}
	}

	var results []model.UserStats
	for _, stats := range r.rows {
		if stats.Score <= 0 {
			continue
		}
		if _, skip := excluded[stats.UserID]; skip {
			continue
		}
		results = append(results, *stats)
	}
	sort.SliceStable(results, func(i, j int) bool {
		if results[i].Score != results[j].Score {
			return results[i].Score > results[j].Score
		}
		return results[i].UserID < results[j].UserID
	})
	if limit > 0 && len(results) > limit {
		results = results[:limit]
	}
	return results
}

func (r *fakeStatsRepo) TopByScore(ctx context.Context, limit int, excludeUserIDs []string) ([]model.UserStats, error) {
	return r.byScore(limit, excludeUserIDs), nil
}

func (r *fakeStatsRepo) AllByScoreDesc(ctx context.Context, excludeUserIDs []string) ([]model.UserStats, error) {
	return r.byScore(0, excludeUserIDs), nil
}

type answerKey struct {
	kind   model.GameKind
	userID string
	itemID string
}

type fakeAnswerRepo struct {
	answers map[answerKey]*model.Answer
	order   []answerKey
}

func newFakeAnswerRepo() *fakeAnswerRepo {
	return &fakeAnswerRepo{answers: make(map[answerKey]*model.Answer)}
}

func (r *fakeAnswerRepo) Upsert(ctx context.Context, kind model.GameKind, answer *model.Answer) error {
	key := answerKey{kind: kind, userID: answer.UserID, itemID: answer.ItemID}
	stored := *answer
	if existing, ok := r.answers[key]; ok {
		// Merge policy: overwrite the listed fields, keep identity and created_at.
		stored.ID = existing.ID
		stored.CreatedAt = existing.CreatedAt
	} else {
		stored.CreatedAt = time.Now()
		r.order = append(r.order, key)
	}
	stored.UpdatedAt = time.Now()
	r.answers[key] = &stored
	return nil
}

func (r *fakeAnswerRepo) AnsweredItemIDs(ctx context.Context, kind model.GameKind, userID string) ([]string, error) {
	var ids []string
	for _, key := range r.order {
		if key.kind == kind && key.userID == userID {
			ids = append(ids, key.itemID)
		}
	}
	return ids, nil
}

func (r *fakeAnswerRepo) CountByUser(ctx context.Context, kind model.GameKind, userID string) (int, error) {
	count := 0
	for key := range r.answers {
		if key.kind == kind && key.userID == userID {
			count++
		}
	}
	return count, nil
}

func (r *fakeAnswerRepo) ListAll(ctx context.Context, kind model.GameKind) ([]model.Answer, error) {
	var answers []model.Answer
	for _, key := range r.order {
		if key.kind == kind {
			answers = append(answers, *r.answers[key])
		}
	}
	return answers, nil
}

type fakeImageRepo struct {
	images map[string]*model.Image
	order  []string
}

func newFakeImageRepo() *fakeImageRepo {
	return &fakeImageRepo{images: make(map[string]*model.Image)}
}

func (r *fakeImageRepo) Create(ctx context.Context, image *model.Image) error {
	stored := *image
	r.images[image.ID] = &stored
	r.order = append(r.order, image.ID)
	return nil
}

func (r *fakeImageRepo) FindByID(ctx context.Context, id string) (*model.Image, error) {
	if image, ok := r.images[id]; ok {
		return image, nil
	}
	return nil, common.ErrNotFound
}

func (r *fakeImageRepo) SetValidated(ctx context.Context, id string, validated bool) error {
	image, ok := r.images[id]
	if !ok {
		return common.ErrNotFound
	}
	image.Validated = validated
	return nil
}

func (r *fakeImageRepo) SetActive(ctx context.Context, id string, active bool) error {
	image, ok := r.images[id]
	if !ok {
		return common.ErrNotFound
	}
	image.Active = active
	return nil
}

func (r *fakeImageRepo) ListPending(ctx context.Context) ([]model.Image, error) {
	var images []model.Image
	for _, id := range r.order {
		image := r.images[id]
		if image.Active && !image.Validated {
			images = append(images, *image)
		}
	}
	return images, nil
}

func (r *fakeImageRepo) CountByUploader(ctx context.Context, uploaderID string, validatedOnly bool) (int, error) {
	count := 0
	for _, image := range r.images {
		if image.UploaderID != uploaderID || !image.Active {
			continue
		}
		if validatedOnly && !image.Validated {
			continue
		}
		count++
	}
	return count, nil
}

func (r *fakeImageRepo) SampleExcluding(ctx context.Context, filter repository.ImageSampleFilter) (*model.Image, error) {
	excluded := make(map[string]struct{}, len(filter.ExcludeIDs))
	for _, id := range filter.ExcludeIDs {
		excluded[id] = struct{}{}
	}
	for _, id := range r.order {
		image := r.images[id]
		if !image.Active {
			continue
		}
		if _, skip := excluded[id]; skip {
			continue
		}
		if filter.OnlyUploaderID != "" {
			if image.UploaderID != filter.OnlyUploaderID {
				continue
			}
		} else if filter.ValidatedOnly && !image.Validated {
			continue
		}
		found := *image
		return &found, nil
	}
	return nil, nil
}

type fakeTagRepo struct {
	tags  map[string]*model.Tag
	order []string
}

func newFakeTagRepo() *fakeTagRepo {
	return &fakeTagRepo{tags: make(map[string]*model.Tag)}
}

func (r *fakeTagRepo) Create(ctx context.Context, tag *model.Tag) error {
	stored := *tag
	r.tags[tag.ID] = &stored
	r.order = append(r.order, tag.ID)
	return nil
}

func (r *fakeTagRepo) FindByID(ctx context.Context, id string) (*model.Tag, error) {
	if tag, ok := r.tags[id]; ok {
		return tag, nil
	}
	return nil, common.ErrNotFound
}

func (r *fakeTagRepo) SampleActiveExcluding(ctx context.Context, excludeIDs []string) (*model.Tag, error) {
	excluded := make(map[string]struct{}, len(excludeIDs))
	for _, id := range excludeIDs {
		excluded[id] = struct{}{}
	}
	for _, id := range r.order {
		tag := r.tags[id]
		if !tag.Active {
			continue
		}
		if _, skip := excluded[id]; skip {
			continue
		}
		found := *tag
		return &found, nil
	}
	return nil, nil
}

type fakeCategoryRepo struct {
	categories map[string]*model.Category
}

func newFakeCategoryRepo() *fakeCategoryRepo {
	return &fakeCategoryRepo{categories: make(map[string]*model.Category)}
}

func (r *fakeCategoryRepo) Create(ctx context.Context, category *model.Category) error {
	stored := *category
	r.categories[category.ID] = &stored
	return nil
}

func (r *fakeCategoryRepo) FindByID(ctx context.Context, id string) (*model.Category, error) {
	if category, ok := r.categories[id]; ok {
		return category, nil
	}
	return nil, common.ErrNotFound
}

func (r *fakeCategoryRepo) ListActive(ctx context.Context) ([]model.Category, error) {
	var categories []model.Category
	for _, category := range r.categories {
		if category.Active {
			categories = append(categories, *category)
		}
	}
	return categories, nil
}

// fakeAdminLister satisfies AdminLister without redis.
type fakeAdminLister struct {
	userRepo repository.UserRepository
}

func (l *fakeAdminLister) AdminIDs(ctx context.Context) (map[string]struct{}, error) {
	ids, err := l.userRepo.ListAdminIDs(ctx)
	if err != nil {
		return nil, err
	}
	set := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		set[id] = struct{}{}
	}
	return set, nil
}
