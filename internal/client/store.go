// Copyright (c) 2026 UserVault. All rights reserved.
// Author: minh.ngo.sg@gmail.com

package client

// SessionStore is the device-local persistence contract for the client.
//
// At most one session exists at a time: saving a new session replaces the
// previous one.
type SessionStore interface {

	/*
		SaveSession persists the access token and the cached profile,
		replacing any previous session.

		Parameters:
		  - token: string
		  - profile: []byte (JSON-encoded user)

		Returns:
		  - error: Persistence failures
	*/
	SaveSession(token string, profile []byte) error

	/*
		Session returns the persisted token and cached profile.

		Returns:
		  - string: Access token ("" when signed out)
		  - []byte: Cached profile JSON (nil when signed out)
		  - error: Retrieval failures
	*/
	Session() (string, []byte, error)

	/*
		Clear removes the persisted session. Clearing an absent session
		is not an error.

		Returns:
		  - error: Persistence failures
	*/
	Clear() error
}
