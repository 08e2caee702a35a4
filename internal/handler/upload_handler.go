package handler

import (
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
	_ "golang.org/x/image/webp"
)

const maxLogoBytes = 5 << 20

var logoExtensions = map[string]string{
	"png":  ".png",
	"jpeg": ".jpg",
	"gif":  ".gif",
	"webp": ".webp",
}

// UploadLogo 处理站点 Logo 上传：校验图片格式后保存并回写站点 logo 字段
func (a *API) UploadLogo(c *gin.Context) {
	id, ok := uintParam(c, "id")
	if !ok {
		return
	}
	if _, err := a.sites.Get(id); err != nil {
		a.writeServiceError(c, err, "failed to load site")
		return
	}

	// 获取上传的文件
	file, err := c.FormFile("logo")
	if err != nil {
		respondError(c, http.StatusBadRequest, "missing logo file")
		return
	}
	if file.Size > maxLogoBytes {
		respondError(c, http.StatusRequestEntityTooLarge, "logo must be 5MB or smaller")
		return
	}

	// 按内容识别格式，不信任 Content-Type 和扩展名
	src, err := file.Open()
	if err != nil {
		respondError(c, http.StatusBadRequest, "could not read logo")
		return
	}
	cfg, format, err := image.DecodeConfig(src)
	src.Close()
	if err != nil {
		respondError(c, http.StatusBadRequest, "logo must be a PNG, JPEG, GIF or WebP image")
		return
	}
	ext, allowed := logoExtensions[format]
	if !allowed {
		respondError(c, http.StatusBadRequest, "logo must be a PNG, JPEG, GIF or WebP image")
		return
	}

	// 创建上传目录
	if err := os.MkdirAll(a.opts.UploadDir, 0o755); err != nil {
		a.logger.Error("create upload dir", zap.Error(err))
		respondError(c, http.StatusInternalServerError, "failed to store logo")
		return
	}

	// 生成唯一文件名
	newFilename := fmt.Sprintf("%s-%s%s", time.Now().Format("20060102"), uuid.New().String(), ext)
	if err := c.SaveUploadedFile(file, filepath.Join(a.opts.UploadDir, newFilename)); err != nil {
		a.logger.Error("save logo", zap.Error(err))
		respondError(c, http.StatusInternalServerError, "failed to store logo")
		return
	}

	fileURL := path.Join(a.opts.UploadURL, newFilename)
	if err := a.sites.SetLogo(id, fileURL); err != nil {
		a.writeServiceError(c, err, "failed to update site logo")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"url":    fileURL,
		"format": format,
		"width":  cfg.Width,
		"height": cfg.Height,
	})
}
