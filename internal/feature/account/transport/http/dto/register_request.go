// Package dto はaccountフィーチャーのHTTPトランスポート層のフォームオブジェクトを定義します。
package dto

// RegisterReq は/account/registerエンドポイントのフォームポストを表します。
// バリデーションはユースケース側で行う（先頭の失敗が優先されるメッセージを
// フォームに再表示するため）ので、bindingタグは付けません。
type RegisterReq struct {
	Name            string `form:"name"`
	Email           string `form:"email"`
	Password        string `form:"password"`
	ConfirmPassword string `form:"confirmPassword"`
}
