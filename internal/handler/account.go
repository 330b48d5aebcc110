package handler

import (
	"context"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"path"
	"slices"
	"strings"

	"github.com/GoArmGo/BlogApp/internal/domain"
	"github.com/GoArmGo/BlogApp/internal/forms"
	"github.com/GoArmGo/BlogApp/internal/usecase"
	"github.com/go-chi/chi/v5"
)

const (
	maxPhotoUpload   = 10 << 20
	dashboardImages  = 8
	msgInvalidLogin  = "Please enter a correct username and password. Note that both fields may be case-sensitive."
	msgEmailInUse    = "Email already in use."
	msgUsernameTaken = "A user with that username already exists."
	msgInvalidPhoto  = "Upload a valid image. The file you uploaded was either not an image or a corrupted image."
)

// safeNext допускает только локальные пути, чтобы ?next= нельзя было увести на чужой сайт
func safeNext(next string) string {
	if next == "" || !strings.HasPrefix(next, "/") || strings.HasPrefix(next, "//") || strings.HasPrefix(next, "/\\") {
		return "/account/"
	}
	return next
}

// Login — вход по имени пользователя и паролю.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	data := &pageData{Title: "Log-in", Form: forms.LoginForm{}, Next: r.URL.Query().Get("next")}
	if r.Method != http.MethodPost {
		h.render(w, r, http.StatusOK, "account/login.html", data)
		return
	}

	if err := r.ParseForm(); err != nil {
		h.respondWithError(w, r, http.StatusBadRequest)
		return
	}
	data.Next = r.PostForm.Get("next")

	var form forms.LoginForm
	data.Errors = forms.Bind(&form, r.PostForm)
	data.Form = forms.LoginForm{Username: form.Username}
	if data.Errors.Any() {
		h.render(w, r, http.StatusOK, "account/login.html", data)
		return
	}

	user, err := h.accounts.Authenticate(r.Context(), form.Username, form.Password)
	if errors.Is(err, domain.ErrInvalidCredentials) {
		data.Errors.Add(forms.NonFieldKey, msgInvalidLogin)
		h.render(w, r, http.StatusOK, "account/login.html", data)
		return
	}
	if err != nil {
		h.serverError(w, r, "failed to authenticate", err)
		return
	}

	h.login(w, r, user)
	h.logger.Info("user logged in", "user_id", user.ID)
	http.Redirect(w, r, safeNext(data.Next), http.StatusSeeOther)
}

// Logout завершает сессию.
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	h.logout(w, r)
	r = r.WithContext(context.WithValue(r.Context(), userCtxKey, (*domain.User)(nil)))
	h.render(w, r, http.StatusOK, "account/logged_out.html", &pageData{Title: "Logged out"})
}

// Register — регистрация пользователя вместе с пустым профилем.
func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	data := &pageData{Title: "Create an account", Form: forms.RegistrationForm{}}
	if r.Method != http.MethodPost {
		h.render(w, r, http.StatusOK, "account/register.html", data)
		return
	}

	if err := r.ParseForm(); err != nil {
		h.respondWithError(w, r, http.StatusBadRequest)
		return
	}
	var form forms.RegistrationForm
	data.Errors = forms.Bind(&form, r.PostForm)
	data.Form = forms.RegistrationForm{Username: form.Username, FirstName: form.FirstName, Email: form.Email}
	if data.Errors.Any() {
		h.render(w, r, http.StatusOK, "account/register.html", data)
		return
	}

	user, err := h.accounts.Register(r.Context(), usecase.RegisterInput{
		Username:  form.Username,
		FirstName: form.FirstName,
		Email:     form.Email,
		Password:  form.Password,
	})
	switch {
	case errors.Is(err, domain.ErrUsernameTaken):
		data.Errors.Add("username", msgUsernameTaken)
	case errors.Is(err, domain.ErrEmailTaken):
		data.Errors.Add("email", msgEmailInUse)
	case err != nil:
		h.serverError(w, r, "failed to register user", err)
		return
	}
	if data.Errors.Any() {
		h.render(w, r, http.StatusOK, "account/register.html", data)
		return
	}

	h.render(w, r, http.StatusOK, "account/register_done.html", &pageData{Title: "Welcome", NewUser: user})
}

// Dashboard — личный раздел пользователя.
func (h *Handler) Dashboard(w http.ResponseWriter, r *http.Request) {
	user := currentUser(r)
	images, err := h.images.UserImages(r.Context(), user.ID, dashboardImages)
	if err != nil {
		h.serverError(w, r, "failed to load user images", err)
		return
	}
	h.render(w, r, http.StatusOK, "account/dashboard.html", &pageData{
		Title:   "Dashboard",
		Section: "dashboard",
		Images:  images,
	})
}

// profileForms — пара форм страницы редактирования профиля
type profileForms struct {
	User    forms.UserEditForm
	Profile forms.ProfileEditForm
}

// Edit — редактирование пользователя и профиля одной формой.
func (h *Handler) Edit(w http.ResponseWriter, r *http.Request) {
	user := currentUser(r)
	data := &pageData{Title: "Edit your account", Section: "edit"}

	if r.Method != http.MethodPost {
		pf := profileForms{User: forms.UserEditForm{FirstName: user.FirstName, LastName: user.LastName, Email: user.Email}}
		if user.Profile != nil && user.Profile.DateOfBirth != nil {
			pf.Profile.DateOfBirth = user.Profile.DateOfBirth.Format(forms.DateLayout)
		}
		data.Form = pf
		h.render(w, r, http.StatusOK, "account/edit.html", data)
		return
	}

	if err := r.ParseMultipartForm(maxPhotoUpload); err != nil && !errors.Is(err, http.ErrNotMultipart) {
		h.respondWithError(w, r, http.StatusBadRequest)
		return
	}
	var pf profileForms
	data.Errors = forms.Bind(&pf.User, r.PostForm)
	for field, msg := range forms.Bind(&pf.Profile, r.PostForm) {
		data.Errors.Add(field, msg)
	}
	data.Form = pf

	photo, photoErr := profilePhoto(r)
	if photoErr != "" {
		data.Errors.Add("photo", photoErr)
	}
	if photo != nil {
		defer photo.close()
	}

	if !data.Errors.Any() {
		in := usecase.ProfileInput{
			FirstName:   pf.User.FirstName,
			LastName:    pf.User.LastName,
			Email:       pf.User.Email,
			DateOfBirth: pf.Profile.BirthDate(),
		}
		if photo != nil {
			in.Photo = &photo.upload
		}
		_, err := h.accounts.UpdateProfile(r.Context(), user.ID, in)
		switch {
		case errors.Is(err, domain.ErrEmailTaken):
			data.Errors.Add("email", msgEmailInUse)
		case errors.Is(err, domain.ErrUnsupportedImage):
			data.Errors.Add("photo", msgInvalidPhoto)
		case err != nil:
			h.serverError(w, r, "failed to update profile", err)
			return
		default:
			h.addFlash(w, r, "success", "Profile updated successfully")
			http.Redirect(w, r, "/account/edit/", http.StatusSeeOther)
			return
		}
	}

	h.addFlash(w, r, "error", "Error updating your profile")
	h.render(w, r, http.StatusOK, "account/edit.html", data)
}

type uploadedPhoto struct {
	upload usecase.Upload
	file   multipart.File
}

func (p *uploadedPhoto) close() {
	_ = p.file.Close()
}

// profilePhoto достаёт необязательное фото из multipart-формы и проверяет расширение и содержимое.
// Вторым значением возвращается текст ошибки поля photo.
func profilePhoto(r *http.Request) (*uploadedPhoto, string) {
	if r.MultipartForm == nil {
		return nil, ""
	}
	file, header, err := r.FormFile("photo")
	if errors.Is(err, http.ErrMissingFile) {
		return nil, ""
	}
	if err != nil {
		return nil, msgInvalidPhoto
	}

	ext := strings.TrimPrefix(strings.ToLower(path.Ext(header.Filename)), ".")
	if !slices.Contains(forms.ValidImageExtensions, ext) {
		_ = file.Close()
		return nil, msgInvalidPhoto
	}

	// тип берётся из содержимого файла, заголовок части multipart задаёт клиент
	head := make([]byte, 512)
	n, err := io.ReadFull(file, head)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		_ = file.Close()
		return nil, msgInvalidPhoto
	}
	contentType, err := domain.DetectImageType(head[:n])
	if err != nil {
		_ = file.Close()
		return nil, msgInvalidPhoto
	}
	if _, err := file.Seek(0, io.SeekStart); err != nil {
		_ = file.Close()
		return nil, msgInvalidPhoto
	}

	return &uploadedPhoto{
		upload: usecase.Upload{
			Filename:    header.Filename,
			ContentType: contentType,
			Body:        file,
		},
		file: file,
	}, ""
}

// PasswordChange — смена пароля с проверкой старого.
func (h *Handler) PasswordChange(w http.ResponseWriter, r *http.Request) {
	data := &pageData{Title: "Change your password", Form: forms.PasswordChangeForm{}}
	if r.Method != http.MethodPost {
		h.render(w, r, http.StatusOK, "account/password_change.html", data)
		return
	}

	if err := r.ParseForm(); err != nil {
		h.respondWithError(w, r, http.StatusBadRequest)
		return
	}
	var form forms.PasswordChangeForm
	data.Errors = forms.Bind(&form, r.PostForm)
	if data.Errors.Any() {
		h.render(w, r, http.StatusOK, "account/password_change.html", data)
		return
	}

	err := h.accounts.ChangePassword(r.Context(), currentUser(r).ID, form.OldPassword, form.NewPassword1)
	if errors.Is(err, domain.ErrInvalidCredentials) {
		data.Errors.Add("old_password", "Your old password was entered incorrectly. Please enter it again.")
		h.render(w, r, http.StatusOK, "account/password_change.html", data)
		return
	}
	if err != nil {
		h.serverError(w, r, "failed to change password", err)
		return
	}

	h.render(w, r, http.StatusOK, "account/password_change_done.html", &pageData{Title: "Password changed"})
}

// PasswordReset — запрос письма со ссылкой сброса пароля.
func (h *Handler) PasswordReset(w http.ResponseWriter, r *http.Request) {
	data := &pageData{Title: "Reset your password", Form: forms.PasswordResetForm{}}
	if r.Method != http.MethodPost {
		h.render(w, r, http.StatusOK, "account/password_reset.html", data)
		return
	}

	if err := r.ParseForm(); err != nil {
		h.respondWithError(w, r, http.StatusBadRequest)
		return
	}
	var form forms.PasswordResetForm
	data.Errors = forms.Bind(&form, r.PostForm)
	data.Form = form
	if data.Errors.Any() {
		h.render(w, r, http.StatusOK, "account/password_reset.html", data)
		return
	}

	if err := h.accounts.RequestPasswordReset(r.Context(), form.Email, h.siteURL(r)); err != nil {
		h.serverError(w, r, "failed to request password reset", err)
		return
	}
	http.Redirect(w, r, "/account/password-reset/done/", http.StatusSeeOther)
}

func (h *Handler) PasswordResetDone(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, http.StatusOK, "account/password_reset_done.html", &pageData{Title: "Reset your password"})
}

// PasswordResetConfirm — установка нового пароля по ссылке из письма.
func (h *Handler) PasswordResetConfirm(w http.ResponseWriter, r *http.Request) {
	uid, token := chi.URLParam(r, "uid"), chi.URLParam(r, "token")
	data := &pageData{Title: "Reset your password", Form: forms.SetPasswordForm{}}

	_, err := h.accounts.CheckResetLink(r.Context(), uid, token)
	if err != nil && !errors.Is(err, domain.ErrInvalidToken) {
		h.serverError(w, r, "failed to check reset link", err)
		return
	}
	data.ValidLink = err == nil
	if !data.ValidLink || r.Method != http.MethodPost {
		h.render(w, r, http.StatusOK, "account/password_reset_confirm.html", data)
		return
	}

	if err := r.ParseForm(); err != nil {
		h.respondWithError(w, r, http.StatusBadRequest)
		return
	}
	var form forms.SetPasswordForm
	data.Errors = forms.Bind(&form, r.PostForm)
	if data.Errors.Any() {
		h.render(w, r, http.StatusOK, "account/password_reset_confirm.html", data)
		return
	}

	err = h.accounts.ResetPassword(r.Context(), uid, token, form.NewPassword1)
	if errors.Is(err, domain.ErrInvalidToken) {
		data.ValidLink = false
		h.render(w, r, http.StatusOK, "account/password_reset_confirm.html", data)
		return
	}
	if err != nil {
		h.serverError(w, r, "failed to reset password", err)
		return
	}
	http.Redirect(w, r, "/account/reset/done/", http.StatusSeeOther)
}

func (h *Handler) PasswordResetComplete(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, http.StatusOK, "account/password_reset_complete.html", &pageData{Title: "Password reset complete"})
}
