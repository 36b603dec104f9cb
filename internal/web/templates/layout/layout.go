package layout

// FlashMessage is a one-shot notice shown on the next page
type FlashMessage struct {
	Type    string
	Message string
}

// PageData is shared by every full page
type PageData struct {
	Title string
	Flash *FlashMessage
}
