package biglist_test

import (
	"errors"
	"fmt"

	"github.com/ssargent/stakelist/pkg/biglist"
	"github.com/ssargent/stakelist/pkg/codec"
)

func Example() {
	buf := make([]byte, 10240)
	list, err := biglist.Init(buf, biglist.Header64)
	if err != nil {
		panic(err)
	}

	_ = list.Append(codec.Validator{StakeBalance: 1000, UnstakeBalance: 250, Active: true})
	_ = list.Append(codec.Validator{StakeBalance: 42})

	for v, err := range list.All() {
		if err != nil {
			fmt.Println("corrupt:", err)
			continue
		}
		fmt.Printf("%d %d %t\n", v.StakeBalance, v.UnstakeBalance, v.Active)
	}
	fmt.Println(list.Len(), list.Capacity())
	// Output:
	// 1000 250 true
	// 42 0 false
	// 2 601
}

func ExampleList_Append_full() {
	buf := make([]byte, 4+2*codec.Size)
	list, _ := biglist.Init(buf, biglist.Header32)

	for i := 0; i < 3; i++ {
		err := list.Append(codec.Validator{StakeBalance: uint64(i)})
		if errors.Is(err, biglist.ErrFull) {
			fmt.Println(err)
		}
	}
	// Output:
	// biglist: list is full: 2 of 2 records
}

func ExampleIterator() {
	buf := make([]byte, 64)
	list, _ := biglist.Init(buf, biglist.Header64)
	_ = list.Append(codec.Validator{StakeBalance: 1, Active: true})
	_ = list.Append(codec.Validator{StakeBalance: 2, Active: true})

	// tamper with the flag byte of record 0
	buf[biglist.RecordOffset(biglist.Header64, 0)+16] = 0x02

	it := list.Iter()
	for it.Next() {
		if it.Err() != nil {
			fmt.Println(it.Index(), it.Err())
			continue
		}
		fmt.Println(it.Index(), it.Validator().StakeBalance)
	}
	// Output:
	// 0 biglist: record 0: codec: invalid active flag: 0x02
	// 1 2
}
