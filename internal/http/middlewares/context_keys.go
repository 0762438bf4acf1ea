package middlewares

const (
	ctxUserIDKey    = "auth.userID"
	ctxRequestIDKey = "request_id"
)
