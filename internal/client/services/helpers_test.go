package services

import (
	"context"
	"encoding/json"
	"slices"
	"sync"
	"testing"
	"time"

	"github.com/dmitrijs2005/dreamsync/internal/client/store"
	"github.com/dmitrijs2005/dreamsync/internal/common"
	"github.com/dmitrijs2005/dreamsync/internal/logging"
	"github.com/dmitrijs2005/dreamsync/internal/models"
	"github.com/stretchr/testify/require"
)

func newStore(t *testing.T) *store.Repositories {
	t.Helper()
	repos, err := store.InitDatabase(context.Background(), ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = repos.Close() })
	return repos
}

// fakeRemote plays the server for one signed-in user, me.
type fakeRemote struct {
	mu sync.Mutex
	me string

	docs      map[string]*models.DreamDocument
	extraRaw  map[string][]json.RawMessage
	queryErr  map[string]error
	upsertErr map[string]error
	queries   []models.DreamQuery
	clock     time.Time

	users     map[string]*models.UserProfile
	updates   []models.ProfileUpdate
	updateErr error
	taken     map[string]bool

	searchCalls []string
	searchLimit int
	searchErr   error

	phoneBatches [][]string
	phoneErr     map[int]error

	socialCalls []string
	socialErr   error

	uploadURL, publicURL string
	deleted              bool

	access, refresh string
	onRefresh       func(access, refresh string)
	signErr         error
}

func newFakeRemote(me string) *fakeRemote {
	return &fakeRemote{
		me:        me,
		docs:      map[string]*models.DreamDocument{},
		extraRaw:  map[string][]json.RawMessage{},
		queryErr:  map[string]error{},
		upsertErr: map[string]error{},
		users:     map[string]*models.UserProfile{},
		taken:     map[string]bool{},
		phoneErr:  map[int]error{},
		clock:     time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
	}
}

func (f *fakeRemote) tick() time.Time {
	f.clock = f.clock.Add(time.Second)
	return f.clock
}

func (f *fakeRemote) addUser(u *models.UserProfile) {
	u.Normalize()
	f.users[u.ID] = u
}

func (f *fakeRemote) QueryDreams(_ context.Context, q models.DreamQuery) ([]json.RawMessage, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.queries = append(f.queries, q)
	if err := f.queryErr[q.OwnerID]; err != nil {
		return nil, err
	}
	var docs []*models.DreamDocument
	for _, d := range f.docs {
		if q.Matches(d) {
			docs = append(docs, d)
		}
	}
	slices.SortFunc(docs, func(a, b *models.DreamDocument) int {
		if q.Order == models.OrderDateDesc {
			return b.Date.Compare(a.Date)
		}
		return b.CreatedAt.Compare(a.CreatedAt)
	})
	out := make([]json.RawMessage, 0, len(docs))
	for _, d := range docs {
		raw, err := json.Marshal(d)
		if err != nil {
			return nil, err
		}
		out = append(out, raw)
	}
	return append(out, f.extraRaw[q.OwnerID]...), nil
}

func (f *fakeRemote) UpsertDream(_ context.Context, d *models.DreamDocument) (*models.DreamDocument, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.upsertErr[d.DreamID]; err != nil {
		return nil, err
	}
	now := f.tick()
	stored := *d
	if prev, ok := f.docs[d.DocID]; ok {
		stored.CreatedAt = prev.CreatedAt
		stored.LikedBy = prev.LikedBy
	} else {
		stored.CreatedAt = now
	}
	stored.UpdatedAt = now
	stored.Normalize()
	f.docs[d.DocID] = &stored
	cp := stored
	return &cp, nil
}

func (f *fakeRemote) MarkDreamDeleted(_ context.Context, dreamID string) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, d := range f.docs {
		if d.OwnerID == f.me && d.DreamID == dreamID {
			d.Deleted = true
			d.UpdatedAt = f.tick()
			n++
		}
	}
	return n, nil
}

func (f *fakeRemote) GetDream(_ context.Context, ownerID, docID string) (*models.DreamDocument, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	d, ok := f.docs[docID]
	if !ok || d.OwnerID != ownerID {
		return nil, common.ErrorNotFound
	}
	cp := *d
	return &cp, nil
}

func (f *fakeRemote) SetDreamLike(_ context.Context, ownerID, docID string, liked bool) (*models.DreamDocument, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	d, ok := f.docs[docID]
	if !ok || d.OwnerID != ownerID {
		return nil, common.ErrorNotFound
	}
	if liked {
		d.LikedBy = models.Union(d.LikedBy, f.me)
	} else {
		d.LikedBy = models.Remove(d.LikedBy, f.me)
	}
	cp := *d
	return &cp, nil
}

func (f *fakeRemote) WatchDream(ctx context.Context, ownerID, docID string) (<-chan *models.DreamDocument, error) {
	d, err := f.GetDream(ctx, ownerID, docID)
	if err != nil {
		return nil, err
	}
	ch := make(chan *models.DreamDocument, 1)
	ch <- d
	go func() {
		<-ctx.Done()
		close(ch)
	}()
	return ch, nil
}

func (f *fakeRemote) GetUser(_ context.Context, id string) (*models.UserProfile, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	cp := *u
	return &cp, nil
}

func (f *fakeRemote) GetUserByUsername(_ context.Context, username string) (*models.UserProfile, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if u.Username == username {
			cp := *u
			return &cp, nil
		}
	}
	return nil, common.ErrorNotFound
}

func (f *fakeRemote) SaveUser(_ context.Context, u *models.UserProfile) (*models.UserProfile, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	cp := *u
	f.users[u.ID] = &cp
	return u, nil
}

func (f *fakeRemote) UpdateProfile(_ context.Context, up models.ProfileUpdate) (*models.UserProfile, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.updates = append(f.updates, up)
	if f.updateErr != nil {
		return nil, f.updateErr
	}
	u, ok := f.users[f.me]
	if !ok {
		return nil, common.ErrorNotFound
	}
	up.Apply(u)
	cp := *u
	return &cp, nil
}

func (f *fakeRemote) StartSession(_ context.Context) (*models.UserProfile, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[f.me]
	if !ok {
		u = models.NewUserProfile(f.me, "", "")
		f.users[f.me] = u
	}
	u.AppsUsed = models.Union(u.AppsUsed, common.AppIdentifier)
	cp := *u
	return &cp, nil
}

func (f *fakeRemote) CheckUsername(_ context.Context, username string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return !f.taken[username], nil
}

func (f *fakeRemote) SearchUsers(_ context.Context, query string, limit int) ([]*models.UserProfile, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.searchCalls = append(f.searchCalls, query)
	f.searchLimit = limit
	if f.searchErr != nil {
		return nil, f.searchErr
	}
	upper := models.UsernamePrefixUpper(query)
	var out []*models.UserProfile
	for _, u := range f.users {
		if u.Username >= query && u.Username < upper {
			out = append(out, u)
		}
	}
	slices.SortFunc(out, func(a, b *models.UserProfile) int {
		switch {
		case a.Username < b.Username:
			return -1
		case a.Username > b.Username:
			return 1
		}
		return 0
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (f *fakeRemote) FindUsersByPhones(_ context.Context, phones []string) ([]*models.UserProfile, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	batch := len(f.phoneBatches)
	f.phoneBatches = append(f.phoneBatches, slices.Clone(phones))
	if err := f.phoneErr[batch]; err != nil {
		return nil, err
	}
	var out []*models.UserProfile
	for _, u := range f.users {
		if slices.Contains(phones, u.PhoneNumber) {
			out = append(out, u)
		}
	}
	return out, nil
}

func (f *fakeRemote) ProfilePictureUploadURL(_ context.Context) (string, string, error) {
	if f.uploadURL == "" {
		return "", "", common.ErrorUnavailable
	}
	return f.uploadURL, f.publicURL, nil
}

func (f *fakeRemote) DeleteAccount(_ context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deleted = true
	delete(f.users, f.me)
	return nil
}

func (f *fakeRemote) WatchUser(ctx context.Context, userID string) (<-chan *models.UserProfile, error) {
	u, err := f.GetUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	ch := make(chan *models.UserProfile, 1)
	ch <- u
	go func() {
		<-ctx.Done()
		close(ch)
	}()
	return ch, nil
}

func (f *fakeRemote) social(action, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.socialCalls = append(f.socialCalls, action+":"+id)
	return f.socialErr
}

func (f *fakeRemote) SendFriendRequest(_ context.Context, id string) error {
	return f.social("send", id)
}

func (f *fakeRemote) AcceptFriendRequest(_ context.Context, id string) error {
	return f.social("accept", id)
}

func (f *fakeRemote) DeclineFriendRequest(_ context.Context, id string) error {
	return f.social("decline", id)
}

func (f *fakeRemote) BlockUser(_ context.Context, id string) error {
	return f.social("block", id)
}

func (f *fakeRemote) UnblockUser(_ context.Context, id string) error {
	return f.social("unblock", id)
}

func (f *fakeRemote) Ping(context.Context) error { return nil }

func (f *fakeRemote) SignUp(_ context.Context, email, password, username string) (string, error) {
	if f.signErr != nil {
		return "", f.signErr
	}
	f.SetTokens("access-"+email, "refresh-"+email)
	return f.me, nil
}

func (f *fakeRemote) SignIn(_ context.Context, email, password string) (string, error) {
	if f.signErr != nil {
		return "", f.signErr
	}
	f.SetTokens("access-"+email, "refresh-"+email)
	return f.me, nil
}

func (f *fakeRemote) WhoAmI(context.Context) (string, error) { return f.me, nil }

func (f *fakeRemote) SetTokens(access, refresh string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.access, f.refresh = access, refresh
}

func (f *fakeRemote) Tokens() (string, string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.access, f.refresh
}

func (f *fakeRemote) OnRefresh(fn func(access, refresh string)) { f.onRefresh = fn }

var _ Remote = (*fakeRemote)(nil)

func nop() logging.Logger { return logging.Nop() }
