// Package forms holds the HTML form payloads bound by the handlers.
package forms

// CredentialsForm is shared by the register and login forms.
type CredentialsForm struct {
	Username string `form:"username"`
	Password string `form:"password"`
}

// TicketForm is shared by the create and edit forms; Status is only
// rendered (and honored) on edit.
type TicketForm struct {
	Title       string `form:"title"`
	Description string `form:"description"`
	Status      string `form:"status"`
}
