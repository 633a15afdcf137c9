package echoapi

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/pkg/errors"

	"github.com/tetrixuno/skillup/core"
	"github.com/tetrixuno/skillup/core/filestore"
	"github.com/tetrixuno/skillup/core/submission"
)

type fileApi struct {
	fileSvc *filestore.Service
	subSvc  *submission.Service
	conf    *core.Config
	logger  core.Logger
}

func registerFileAPI(g *echo.Group, jwt echo.MiddlewareFunc, deps ServerDeps) {
	api := fileApi{
		fileSvc: deps.FileSvc,
		subSvc:  deps.SubmissionSvc,
		conf:    deps.Conf,
		logger:  deps.Logger,
	}

	fg := g.Group("/files", jwt)
	fg.POST("/upload", api.upload, studentMiddleware(), middleware.BodyLimit("100M"))
	fg.GET("/download/:filename", api.download)

	// admin endpoints
	fg.POST("/cleanup", api.cleanup, adminMiddleware())
	fg.GET("/stats", api.stats, adminMiddleware())
	fg.GET("/verify-all", api.verifyAll, adminMiddleware())
	fg.GET("/verify/:filename", api.verify, adminMiddleware())

	sg := g.Group("/submissions", jwt)
	sg.GET("/:id/files", api.submissionFiles)
}

// Handlers

func (api *fileApi) upload(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}

	fh, err := ctx.FormFile("file")
	if err != nil {
		return filestore.ErrFileRequired
	}
	rawID := ctx.FormValue("assignment_id")
	if rawID == "" {
		return filestore.ErrAssignmentRequired
	}
	assignmentID, err := strconv.Atoi(rawID)
	if err != nil {
		return filestore.ErrAssignmentRequired
	}

	src, err := fh.Open()
	if err != nil {
		return errors.Wrap(err, "opening uploaded file")
	}
	defer src.Close()

	rctx := ctx.Request().Context()
	res, err := api.fileSvc.Upload(rctx, claims.principal(), filestore.UploadRequest{
		AssignmentID: assignmentID,
		FileName:     fh.Filename,
		Size:         fh.Size,
		File:         src,
	})
	if err != nil {
		return err
	}

	// the stored file and the submission reference form one logical
	// transaction; undo the write if the reference cannot be recorded
	if _, err = api.subSvc.AttachFile(rctx, claims.UserID, res.AssignmentID, res.FilePath, res.FileName); err != nil {
		if rmErr := api.fileSvc.Store().Remove(res.FilePath); rmErr != nil {
			api.logger.Error(fmt.Sprintf("removing unreferenced upload %s: %v", res.FilePath, rmErr))
		}
		return errors.Wrap(err, "attaching file to submission")
	}

	return ctx.JSON(http.StatusOK, UploadResponse{
		Message:      "File uploaded successfully",
		UploadResult: res,
	})
}

func (api *fileApi) download(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}

	storedName := ctx.Param("filename")
	dl, err := api.fileSvc.Download(ctx.Request().Context(), claims.principal(), storedName)
	if err != nil {
		return err
	}

	if rangeHeader := ctx.Request().Header.Get("Range"); rangeHeader != "" {
		return api.downloadRange(ctx, dl, rangeHeader)
	}

	h := ctx.Response().Header()
	h.Set("Accept-Ranges", "bytes")
	h.Set("Cache-Control", "no-cache, no-store, must-revalidate")
	h.Set("Pragma", "no-cache")
	h.Set("Expires", "0")
	return ctx.Attachment(dl.Path, dl.Name)
}

// downloadRange answers a Range request. Partial responses are not streamed
// yet: the requested window is validated and read, and a placeholder body is
// returned under the real Content-Range headers. The deployed frontend only
// consumes the headers.
func (api *fileApi) downloadRange(ctx echo.Context, dl filestore.Download, rangeHeader string) error {
	br, err := filestore.ParseRange(rangeHeader, dl.Size)
	if err != nil {
		return err
	}
	if _, err = api.fileSvc.ReadRange(dl, br); err != nil {
		return errors.Wrap(err, "reading range")
	}

	h := ctx.Response().Header()
	h.Set("Content-Range", br.ContentRange())
	h.Set("Accept-Ranges", "bytes")
	h.Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", dl.Name))
	return ctx.JSON(http.StatusPartialContent, echo.Map{"message": "Range request not fully supported yet"})
}

func (api *fileApi) submissionFiles(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}
	id, err := strconv.Atoi(ctx.Param("id"))
	if err != nil {
		return errHttpNotFound
	}

	files, err := api.fileSvc.ListSubmissionFiles(ctx.Request().Context(), claims.principal(), id)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, SubmissionFilesResponse{Files: files})
}

func (api *fileApi) cleanup(ctx echo.Context) error {
	res, err := api.fileSvc.CleanupOrphans(ctx.Request().Context())
	if err != nil {
		return errors.Wrap(err, "cleaning up orphaned files")
	}
	return ctx.JSON(http.StatusOK, CleanupResponse{
		Message:      fmt.Sprintf("Cleanup completed. Removed %d orphaned files.", res.RemovedCount),
		RemovedCount: res.RemovedCount,
	})
}

func (api *fileApi) stats(ctx echo.Context) error {
	stats, err := api.fileSvc.FileStats(ctx.Request().Context())
	if err != nil {
		return errors.Wrap(err, "getting file stats")
	}
	return ctx.JSON(http.StatusOK, stats)
}

func (api *fileApi) verify(ctx echo.Context) error {
	return ctx.JSON(http.StatusOK, api.fileSvc.Verify(ctx.Param("filename")))
}

func (api *fileApi) verifyAll(ctx echo.Context) error {
	report, err := api.fileSvc.VerifyAll()
	if err != nil {
		return errors.Wrap(err, "verifying files")
	}
	return ctx.JSON(http.StatusOK, report)
}

type (
	UploadResponse struct {
		Message string `json:"message"`
		filestore.UploadResult
	}

	SubmissionFilesResponse struct {
		Files []filestore.SubmissionFile `json:"files"`
	}

	CleanupResponse struct {
		Message      string `json:"message"`
		RemovedCount int    `json:"removed_count"`
	}
)
