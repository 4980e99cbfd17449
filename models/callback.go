package models

// AvatarCallback is notified when a scheduled load finishes. Loaded is called
// when an avatar was fetched, Error when the network call failed or the job
// was cancelled. Neither is called when there is no avatar for the hash.
type AvatarCallback interface {
	Loaded(avatar AvatarType)
	Error(err error)
}

// AvatarCallbackFuncs adapts a pair of functions to AvatarCallback. Either
// may be nil.
type AvatarCallbackFuncs struct {
	OnLoaded func(avatar AvatarType)
	OnError  func(err error)
}

// Loaded implements AvatarCallback
func (f AvatarCallbackFuncs) Loaded(avatar AvatarType) {
	if f.OnLoaded != nil {
		f.OnLoaded(avatar)
	}
}

// Error implements AvatarCallback
func (f AvatarCallbackFuncs) Error(err error) {
	if f.OnError != nil {
		f.OnError(err)
	}
}
