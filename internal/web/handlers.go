package web

import (
	"encoding/json"
	"errors"
	"fmt"
	"html/template"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	apierrors "github.com/diogo/geminichat/internal/errors"
	"github.com/diogo/geminichat/internal/history"
	"github.com/diogo/geminichat/internal/markup"
)

type messageView struct {
	Index   int
	User    bool
	Label   string
	Text    string
	HTML    template.HTML
	Editing bool
}

type pageData struct {
	Models   string
	Messages []messageView
	Dark     bool
	Busy     bool
	Editing  bool
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}

func (s *Server) index(w http.ResponseWriter, r *http.Request) {
	sess := s.sessions.peek(r)
	editIndex, editing := sess.chat.EditIndex()

	data := pageData{
		Models:  strings.Join(sess.chat.Dispatcher().Models(), " → "),
		Dark:    sess.Dark(),
		Busy:    sess.chat.Busy(),
		Editing: editing,
	}
	for i, msg := range sess.chat.Messages() {
		view := messageView{
			Index:   i,
			User:    msg.IsUser(),
			Label:   msg.Role.Label(),
			Text:    msg.Text,
			Editing: editing && i == editIndex,
			HTML:    template.HTML(markup.Format(msg.Text)),
		}
		data.Messages = append(data.Messages, view)
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := pageTemplate.Execute(w, data); err != nil {
		s.logger.Error().Err(err).Msg("render page")
	}
}

func (s *Server) ask(w http.ResponseWriter, r *http.Request) {
	sess := s.sessions.get(w, r)

	question := r.PostFormValue("question")
	if strings.TrimSpace(question) == "" {
		redirectHome(w, r)
		return
	}

	turn, err := sess.chat.Prepare(question)
	if err != nil {
		s.fail(w, err)
		return
	}

	_, result := turn.Resolve(r.Context())
	if result.Fallback {
		s.logger.Error().Err(result.Err()).Msg("no model produced an answer")
	} else {
		s.logger.Info().Str("model", result.Model).Bool("edited", turn.Edited).Msg("answered")
	}
	redirectHome(w, r)
}

func (s *Server) beginEdit(w http.ResponseWriter, r *http.Request) {
	sess := s.sessions.get(w, r)

	index, err := strconv.Atoi(chi.URLParam(r, "index"))
	if err != nil {
		http.Error(w, "invalid message index", http.StatusBadRequest)
		return
	}

	// clicking another message's edit button moves the edit there
	if current, editing := sess.chat.EditIndex(); editing && current != index && !sess.chat.Busy() {
		sess.chat.CancelEdit()
	}
	if _, err := sess.chat.BeginEdit(index); err != nil {
		s.fail(w, err)
		return
	}
	redirectHome(w, r)
}

func (s *Server) cancelEdit(w http.ResponseWriter, r *http.Request) {
	s.sessions.get(w, r).chat.CancelEdit()
	redirectHome(w, r)
}

func (s *Server) toggleTheme(w http.ResponseWriter, r *http.Request) {
	s.sessions.get(w, r).toggleDark()
	redirectHome(w, r)
}

func (s *Server) newChat(w http.ResponseWriter, r *http.Request) {
	if err := s.sessions.get(w, r).chat.Reset(); err != nil {
		s.fail(w, err)
		return
	}
	redirectHome(w, r)
}

func (s *Server) exportMarkdown(w http.ResponseWriter, r *http.Request) {
	sess := s.sessions.peek(r)
	doc := history.ExportMarkdown(sess.chat.Messages(), history.DefaultExportOptions())

	w.Header().Set("Content-Type", "text/markdown; charset=utf-8")
	w.Header().Set("Content-Disposition", attachment("md"))
	_, _ = w.Write([]byte(doc))
}

func (s *Server) exportJSON(w http.ResponseWriter, r *http.Request) {
	sess := s.sessions.peek(r)
	doc, err := history.ExportJSON(sess.chat.Messages(), history.DefaultExportOptions())
	if err != nil {
		s.fail(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Content-Disposition", attachment("json"))
	_, _ = w.Write(doc)
}

// fail maps session errors to HTTP statuses
func (s *Server) fail(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, apierrors.ErrRequestInFlight), errors.Is(err, apierrors.ErrEditActive):
		status = http.StatusConflict
	case errors.Is(err, apierrors.ErrInvalidEditIndex), errors.Is(err, apierrors.ErrNotUserMessage),
		errors.Is(err, apierrors.ErrEmptyPrompt):
		status = http.StatusBadRequest
	default:
		s.logger.Error().Err(err).Msg("request failed")
	}
	http.Error(w, err.Error(), status)
}

func redirectHome(w http.ResponseWriter, r *http.Request) {
	http.Redirect(w, r, "/#bottom", http.StatusSeeOther)
}

func attachment(ext string) string {
	return fmt.Sprintf(`attachment; filename="geminichat-%s.%s"`, time.Now().Format("20060102-150405"), ext)
}
