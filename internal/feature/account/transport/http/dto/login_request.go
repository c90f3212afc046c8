package dto

// LoginReq は/account/loginエンドポイントのフォームポストを表します。
// rememberMeはチェックボックス（value="true"）として送信されます。
type LoginReq struct {
	Email      string `form:"email"`
	Password   string `form:"password"`
	RememberMe bool   `form:"rememberMe"`
}
