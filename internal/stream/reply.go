package stream

import "fmt"

// DefaultGreeting substitutes for an empty chat message.
const DefaultGreeting = "hello"

// CannedReply pairs a trigger phrase with its full response body.
type CannedReply struct {
	Trigger  string
	Response string
}

// ReplyBook selects reply bodies for incoming chat messages.
//
// Matching is an ordered scan: the first entry whose trigger equals the
// message wins. Messages that match nothing get the fallback template with
// the message substituted in, so precedence between overlapping triggers is
// the list order, not map iteration luck.
type ReplyBook struct {
	replies  []CannedReply
	fallback string // fmt template with a single %s for the message
}

// NewReplyBook builds a reply book from an ordered trigger list and a
// fallback template.
func NewReplyBook(replies []CannedReply, fallback string) *ReplyBook {
	return &ReplyBook{replies: replies, fallback: fallback}
}

// Compose returns the reply body for message.
func (b *ReplyBook) Compose(message string) string {
	for _, reply := range b.replies {
		if reply.Trigger == message {
			return reply.Response
		}
	}
	return fmt.Sprintf(b.fallback, message)
}

// DefaultReplyBook returns the demo responses served by the mock backend.
func DefaultReplyBook() *ReplyBook {
	return NewReplyBook([]CannedReply{
		{
			Trigger: "hello",
			Response: "Hello! I am the TrueSignal assistant. I can help you analyze " +
				"information, generate summaries, or evaluate content quality. " +
				"What can I do for you?",
		},
		{
			Trigger: "help",
			Response: "Here is what I can help with:\n\n" +
				"**1. Information analysis** - scan your RSS sources and surface key items and trends.\n\n" +
				"**2. Content evaluation** - score articles by novelty and depth.\n\n" +
				"**3. Automatic summaries** - condense long articles so you can skim them.\n\n" +
				"**4. Multi-source aggregation** - pull related content from several feeds without duplicates.",
		},
	},
		"I received your message: %q.\n\n"+
			"This reply is being streamed to you character by character over "+
			"Server-Sent Events while I process the request.\n\n"+
			"### What you are seeing\n\n"+
			"- **Live streaming** - each character arrives as its own delta event\n"+
			"- **Markdown support** - the text renders as formatted output\n"+
			"- **Execution cards** - some turns end with a run summary\n\n"+
			"Everything you send is persisted to the local data files, so the "+
			"conversation survives a restart.")
}
