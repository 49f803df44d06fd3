package consts

// 上下文中的用户身份
const (
	CtxAddress = "address"
	CtxViewer  = "viewer"
	CtxToken   = "token"
	CtxClaims  = "claims"
)
