package model

import "github.com/rs/xid"

// Id prefixes. The random part is an xid: 20 chars, sortable by creation time.
const (
	ThreadIDPrefix     = "thr_"
	SuggestionIDPrefix = "s_"
	UserIDPrefix       = "user_"
)

func NewThreadID() string     { return ThreadIDPrefix + xid.New().String() }
func NewSuggestionID() string { return SuggestionIDPrefix + xid.New().String() }
func NewUserID() string       { return UserIDPrefix + xid.New().String() }
