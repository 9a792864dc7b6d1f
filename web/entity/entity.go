// Package entity defines the payloads exchanged by the panel API.
package entity

// Msg is the envelope of every API response.
type Msg struct {
	Success bool   `json:"success"`
	Msg     string `json:"msg"`
	Obj     any    `json:"obj"`
}

// LoginForm is the body of POST /login.
type LoginForm struct {
	Username string `json:"username" form:"username"`
	Password string `json:"password" form:"password"`
}

// LangForm is the body of POST /panel/api/admin/lang.
type LangForm struct {
	Lang string `json:"lang" form:"lang"`
}

// LogsQuery selects buffered log lines for GET /panel/api/admin/logs.
type LogsQuery struct {
	Count int    `form:"count"`
	Level string `form:"level"`
}

// UserForm is the body of POST /panel/api/admin/users.
type UserForm struct {
	Username string `json:"username" form:"username"`
	Password string `json:"password" form:"password"`
}
