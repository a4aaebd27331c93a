package codec_test

import (
	"bytes"
	"fmt"
	"log"

	"github.com/ssargent/skyactions/pkg/codec"
)

// Example demonstrates writing and reading back a single action record.
func Example() {
	var buf bytes.Buffer

	if _, err := codec.WriteArrayHeader(&buf, 1); err != nil {
		log.Fatal(err)
	}
	if _, err := codec.WriteInt(&buf, 1); err != nil {
		log.Fatal(err)
	}
	if _, err := codec.WriteString(&buf, "purchase"); err != nil {
		log.Fatal(err)
	}

	fmt.Printf("Encoded: %x\n", buf.Bytes())

	r := bytes.NewReader(buf.Bytes())
	count, _, err := codec.ReadArrayHeader(r)
	if err != nil {
		log.Fatal(err)
	}
	id, _, err := codec.ReadInt(r)
	if err != nil {
		log.Fatal(err)
	}
	name, err := codec.ReadString(r)
	if err != nil {
		log.Fatal(err)
	}

	fmt.Printf("Count: %d\n", count)
	fmt.Printf("Action: %d %s\n", id, name)

	// Output:
	// Encoded: 9101a87075726368617365
	// Count: 1
	// Action: 1 purchase
}

// ExampleReadString_truncated shows that a failed read leaves the stream where it was.
func ExampleReadString_truncated() {
	r := bytes.NewReader([]byte{0xa8, 'p', 'u', 'r'})

	_, err := codec.ReadString(r)
	fmt.Println("Error:", err != nil)
	fmt.Println("Unread bytes:", r.Len())

	// Output:
	// Error: true
	// Unread bytes: 4
}
