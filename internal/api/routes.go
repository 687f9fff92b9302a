// 包 api：集中注册 HTTP API 路由以解耦主入口
package api

import "net/http"

// 构建并返回 API 路由：独立 ServeMux 便于在主入口挂载到 API_BASE 前缀
// 约束：仅注册 GET，其他方法由 ServeMux 返回 405
func BuildRoutes(verify *VerifyHandler) *http.ServeMux {
	apiMux := http.NewServeMux()
	apiMux.Handle("GET /test/verify", verify)
	return apiMux
}
