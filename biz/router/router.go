package router

import (
	"github.com/cloudwego/hertz/pkg/app/server"

	"github.com/kotoba-app/kotoba/biz/handler"
	"github.com/kotoba-app/kotoba/biz/middleware"
)

// Register configures HTTP routes for the storage gateway and the media
// library.
func Register(r *server.Hertz, sh *handler.StorageHandler, lh *handler.LibraryHandler) {
	v1 := r.Group("/api/v1")

	if sh != nil {
		st := v1.Group("/storage")
		st.POST("/sign-upload", sh.SignUpload)
		st.POST("/sign-upload-batch", sh.SignUploadBatch)
		st.PUT("/upload", sh.Upload)
		st.POST("/multipart/init", sh.MultipartInit)
		st.PUT("/multipart/part", sh.MultipartPart)
		st.POST("/multipart/complete", sh.MultipartComplete)
		st.POST("/multipart/abort", sh.MultipartAbort)
		st.GET("/list", sh.List)
		st.DELETE("/delete", append(middleware.DeleteLockMw(), sh.Delete)...)
		st.GET("/raw", sh.Raw)
	}

	if lh != nil {
		lib := v1.Group("/library")
		lib.POST("/media", lh.RegisterMedia)
		lib.GET("/media", lh.ListMedia)
		lib.GET("/media/:fileID", lh.GetMediaFile)
		lib.DELETE("/media/:fileID", lh.RemoveMedia)
	}

	r.GET("/ping", handler.Ping)
}
