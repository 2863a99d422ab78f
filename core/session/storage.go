package session

// storage keys
const (
	TokenKey = "token"
	UserKey  = "user"
)

// Storage is a string key/value store that outlives the process (or the request).
// Every write is expected to be durable once it returns.
type Storage interface {
	Get(key string) (value string, ok bool, err error)
	Set(key, value string) error
	Remove(keys ...string) error
}
