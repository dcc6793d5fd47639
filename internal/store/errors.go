// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Vorte Contributors

package store

import vorteerr "github.com/vorte-dev/vorte/pkg/errors"

const CodeConversationNotFound vorteerr.Code = "store.conversation.not_found"

// ConversationNotFound reports a conversation with no recorded messages.
func ConversationNotFound(conversationID string) error {
	return vorteerr.New(CodeConversationNotFound, "conversation not found",
		vorteerr.FieldConversationID(conversationID))
}

// InvalidConversation reports an empty conversation id.
func InvalidConversation() error {
	return vorteerr.New(vorteerr.CodeStoreInvalidInput, "conversation id is required")
}
