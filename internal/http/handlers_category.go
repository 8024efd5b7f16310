package http

import (
	"context"
	"errors"
	"net/http"

	"expensetracker/internal/core"
	"expensetracker/internal/log"
	"expensetracker/internal/storage"
)

const (
	MsgCategorySaved      = "Category saved successfully."
	MsgCategoryDeleted    = "Category deleted successfully."
	MsgCategoryNotFound   = "Category not found."
	MsgCategoriesFailed   = "Unable to load categories. Please try again later."
	MsgCategorySaveFailed = "Unable to save the category. Please try again later."
	MsgCategoryDelFailed  = "Unable to delete the category. Please try again later."
)

func (s *Server) handleListCategories(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	cats, err := s.deps.Categories.List(ctx)
	if err != nil {
		s.logFailure(r, "Failed to list categories", err, log.ComponentCategory, log.OpList)
		s.render(w, r, http.StatusInternalServerError, "categories", page{
			Title:  "Categories",
			Active: "categories",
			Flash:  &Flash{Kind: FlashError, Message: MsgCategoriesFailed},
			Data:   []core.Category{},
		})
		return
	}
	s.render(w, r, http.StatusOK, "categories", page{Title: "Categories", Active: "categories", Data: cats})
}

func (s *Server) handleEditCategory(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id, err := parseID(r.URL.Query().Get("id"))
	if err != nil {
		s.renderError(w, r, http.StatusNotFound, MsgCategoryNotFound)
		return
	}

	form := categoryFormFrom(core.Category{})
	if id != 0 {
		c, err := s.deps.Categories.Get(ctx, id)
		if errors.Is(err, storage.ErrNotFound) {
			s.renderError(w, r, http.StatusNotFound, MsgCategoryNotFound)
			return
		}
		if err != nil {
			s.logFailure(r, "Failed to load category", err, log.ComponentCategory, log.OpRead)
			s.renderError(w, r, http.StatusInternalServerError, MsgCategoriesFailed)
			return
		}
		form = categoryFormFrom(c)
	}
	s.renderCategoryForm(w, r, http.StatusOK, form)
}

func (s *Server) handleSaveCategory(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if err := parseForm(w, r); err != nil {
		s.renderError(w, r, http.StatusBadRequest, "Invalid request.")
		return
	}
	c, form, err := parseCategory(r.PostForm)
	if err != nil {
		s.renderError(w, r, http.StatusNotFound, MsgCategoryNotFound)
		return
	}

	_, err = s.deps.Categories.Save(ctx, c)
	if v, ok := core.AsValidation(err); ok {
		logRejected(r, log.ComponentCategory, v)
		form.Errors = v.ByField()
		s.renderCategoryForm(w, r, http.StatusUnprocessableEntity, form)
		return
	}
	if errors.Is(err, storage.ErrNotFound) {
		s.renderError(w, r, http.StatusNotFound, MsgCategoryNotFound)
		return
	}
	if err != nil {
		s.logFailure(r, "Failed to save category", err, log.ComponentCategory, log.OpUpdate)
		form.Notice = MsgCategorySaveFailed
		s.renderCategoryForm(w, r, http.StatusInternalServerError, form)
		return
	}

	redirectWithFlash(w, r, "/categories", Flash{Kind: FlashSuccess, Message: MsgCategorySaved})
}

func (s *Server) handleDeleteCategory(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id, err := parseID(r.PathValue("id"))
	if err != nil || id == 0 {
		redirectWithFlash(w, r, "/categories", Flash{Kind: FlashError, Message: MsgCategoryNotFound})
		return
	}

	err = s.deps.Categories.Delete(ctx, id)
	switch {
	case err == nil:
		redirectWithFlash(w, r, "/categories", Flash{Kind: FlashSuccess, Message: MsgCategoryDeleted})
	case errors.Is(err, core.ErrCategoryInUse):
		redirectWithFlash(w, r, "/categories", Flash{Kind: FlashError, Message: core.MsgCategoryInUse})
	case errors.Is(err, storage.ErrNotFound):
		redirectWithFlash(w, r, "/categories", Flash{Kind: FlashError, Message: MsgCategoryNotFound})
	default:
		s.logFailure(r, "Failed to delete category", err, log.ComponentCategory, log.OpDelete)
		redirectWithFlash(w, r, "/categories", Flash{Kind: FlashError, Message: MsgCategoryDelFailed})
	}
}

func (s *Server) renderCategoryForm(w http.ResponseWriter, r *http.Request, status int, form CategoryForm) {
	title := "Edit Category"
	if form.IsNew() {
		title = "New Category"
	}
	var flash *Flash
	if form.Notice != "" {
		flash = &Flash{Kind: FlashError, Message: form.Notice}
	}
	s.render(w, r, status, "category_form", page{Title: title, Active: "categories", Flash: flash, Data: form})
}

// logFailure records an infrastructure error behind a generic user notice.
func (s *Server) logFailure(r *http.Request, msg string, err error, component, op string) {
	log.NewStructuredLogger(log.FromContext(r.Context())).
		LogError(r.Context(), msg, err, component, op, log.NewFields().WithErrorType(errorType(err)))
}

// logRejected records input the user has to fix; it is not a fault.
func logRejected(r *http.Request, component string, v *core.ValidationError) {
	log.FromContext(r.Context()).WithComponent(component).DebugContext(r.Context(), "Form rejected",
		log.FieldOperation, log.OpValidate, log.FieldError, v.Error())
}

func errorType(err error) string {
	switch {
	case errors.Is(err, storage.ErrNotFound):
		return log.ErrorTypeNotFound
	case errors.Is(err, storage.ErrDuplicate), errors.Is(err, storage.ErrInUse):
		return log.ErrorTypeConflict
	case errors.Is(err, context.DeadlineExceeded):
		return log.ErrorTypeTimeout
	default:
		return log.ErrorTypeDatabase
	}
}
