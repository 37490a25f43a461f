package controller

// Kind identifies a command.
type Kind int

const (
	KindRestore Kind = iota + 1
	KindLogin
	KindLogout
	KindSignup
	KindUnregister
	KindRefresh

	// Timer commands. They carry the generation that was current when the
	// timer was armed and are dropped when it has moved on.
	KindRevealMain
	KindHideMessage
)

var kindNames = map[Kind]string{
	KindRestore:     "restore",
	KindLogin:       "login",
	KindLogout:      "logout",
	KindSignup:      "signup",
	KindUnregister:  "unregister",
	KindRefresh:     "refresh",
	KindRevealMain:  "reveal_main",
	KindHideMessage: "hide_message",
}

// String returns the log name of k.
func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return "unknown"
}

// Command is one user action or timer expiry.
type Command struct {
	Kind       Kind
	Email      string
	Password   string
	Activity   string
	Control    int
	Generation uint64
}

// Restore loads a saved session at startup.
func Restore() Command { return Command{Kind: KindRestore} }

// Login submits the login form.
func Login(email, password string) Command {
	return Command{Kind: KindLogin, Email: email, Password: password}
}

// Logout signs the current user out.
func Logout() Command { return Command{Kind: KindLogout} }

// Signup submits the sign-up form. The activity may be a name or its
// position in the selector. Email is ignored when the form field is read-only.
func Signup(activityName, email string) Command {
	return Command{Kind: KindSignup, Activity: activityName, Email: email}
}

// Unregister activates the delete control numbered n.
func Unregister(n int) Command { return Command{Kind: KindUnregister, Control: n} }

// Refresh re-fetches the roster.
func Refresh() Command { return Command{Kind: KindRefresh} }

func revealMain(gen uint64) Command { return Command{Kind: KindRevealMain, Generation: gen} }

func hideMessage(gen uint64) Command { return Command{Kind: KindHideMessage, Generation: gen} }
