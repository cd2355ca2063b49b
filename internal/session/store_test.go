package session

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewStore(t *testing.T) {
	store := NewStore()

	sess := store.Read()
	assert.True(t, sess.Loading)
	assert.Nil(t, sess.User)
	assert.Empty(t, sess.Token)
}

func TestStore_Write(t *testing.T) {
	t.Run("replaces the whole record", func(t *testing.T) {
		store := NewStore()
		store.Write(Session{
			Token: "tok1",
			User:  &User{ID: "u1", Email: "a@b.com", Role: RoleStudent},
		})

		store.Write(LoggedOut())

		sess := store.Read()
		assert.False(t, sess.Loading)
		assert.Nil(t, sess.User)
		assert.Empty(t, sess.Token)
	})

	t.Run("read returns a copy", func(t *testing.T) {
		store := NewStore()
		store.Write(Session{Token: "tok1", User: &User{ID: "u1", Role: RoleStudent}})

		sess := store.Read()
		sess.User.SWOTComplete = true

		assert.False(t, store.Read().User.SWOTComplete)
	})

	t.Run("caller mutation after write is not observed", func(t *testing.T) {
		store := NewStore()
		user := &User{ID: "u1", Role: RoleStudent}
		store.Write(Session{Token: "tok1", User: user})

		user.Role = RoleTeacher

		assert.Equal(t, RoleStudent, store.Read().User.Role)
	})
}

func TestStore_Subscribe(t *testing.T) {
	t.Run("notifies in subscription order", func(t *testing.T) {
		store := NewStore()

		var order []string
		store.Subscribe(func(Session) { order = append(order, "first") })
		store.Subscribe(func(Session) { order = append(order, "second") })

		store.Write(LoggedOut())

		assert.Equal(t, []string{"first", "second"}, order)
	})

	t.Run("subscriber sees the written value", func(t *testing.T) {
		store := NewStore()

		var got Session
		store.Subscribe(func(s Session) { got = s })

		store.Write(Session{Token: "tok1", User: &User{ID: "u1", Role: RoleTeacher}})

		require.NotNil(t, got.User)
		assert.Equal(t, "u1", got.User.ID)
		assert.Equal(t, "tok1", got.Token)
	})

	t.Run("unsubscribe stops notifications", func(t *testing.T) {
		store := NewStore()

		calls := 0
		unsubscribe := store.Subscribe(func(Session) { calls++ })
		store.Write(LoggedOut())
		unsubscribe()
		store.Write(LoggedOut())

		assert.Equal(t, 1, calls)
	})

	t.Run("subscriber may read the store", func(t *testing.T) {
		store := NewStore()

		var seen Session
		store.Subscribe(func(Session) { seen = store.Read() })
		store.Write(Session{Token: "tok2", User: &User{ID: "u2", Role: RoleStudent}})

		assert.Equal(t, "tok2", seen.Token)
	})
}

func TestStore_ConcurrentAccess(t *testing.T) {
	store := NewStore()

	var wg sync.WaitGroup
	for i := range 50 {
		wg.Add(2)
		go func() {
			defer wg.Done()
			if i%2 == 0 {
				store.Write(LoggedOut())
			} else {
				store.Write(Session{Token: "tok", User: &User{ID: "u", Role: RoleStudent}})
			}
		}()
		go func() {
			defer wg.Done()
			sess := store.Read()
			// a reader never observes a user without a token
			if sess.User != nil {
				assert.NotEmpty(t, sess.Token)
			}
		}()
	}
	wg.Wait()
}

func TestStore_ConcurrentWritesNotifyInOrder(t *testing.T) {
	store := NewStore()

	var (
		mu   sync.Mutex
		last Session
	)
	store.Subscribe(func(s Session) {
		mu.Lock()
		last = s
		mu.Unlock()
	})

	var wg sync.WaitGroup
	for i := range 100 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			store.Write(Session{Token: fmt.Sprintf("tok%d", i), User: &User{ID: "u", Role: RoleStudent}})
		}()
	}
	wg.Wait()

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, store.Read(), last)
}

func TestSession_Helpers(t *testing.T) {
	assert.False(t, LoggedOut().Authenticated())
	assert.False(t, LoggedOut().NeedsSWOT())

	student := Session{Token: "t", User: &User{Role: RoleStudent}}
	assert.True(t, student.Authenticated())
	assert.True(t, student.NeedsSWOT())
	assert.False(t, student.IsTeacher())

	teacher := Session{Token: "t", User: &User{Role: RoleTeacher}}
	assert.True(t, teacher.IsTeacher())
	assert.False(t, teacher.NeedsSWOT())

	assert.True(t, RoleStudent.Valid())
	assert.True(t, RoleTeacher.Valid())
	assert.False(t, Role("admin").Valid())
}
