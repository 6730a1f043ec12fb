package parser

import "testing"

const sampleTSX = `import React from "react";
import { useState } from "react";

export interface Props {
  label: string;
}

export function Button(props: Props) {
  const [clicked, setClicked] = useState(false);
  return (
    <button onClick={() => setClicked(true)}>{props.label}</button>
  );
}

export class Legacy extends React.Component {
  render() {
    return <div>legacy</div>;
  }
}
`

func TestJSParserReactRecognizers(t *testing.T) {
	p := &JSParser{lang: "react", react: true}
	r := p.Parse("button.tsx", []byte(sampleTSX))

	if _, ok := r.Functions["button.tsx::Button"]; !ok {
		t.Fatalf("expected Button function component, got %v", keysOf(r.Functions))
	}
	if _, ok := r.Classes["button.tsx::Legacy"]; !ok {
		t.Fatalf("expected Legacy class component, got %v", keysOf(r.Classes))
	}
	if r.Imports["button.tsx"]["react"] == 0 {
		t.Fatalf("expected react import to be recorded")
	}

	var sawHook, sawJSX, sawClassComponent bool
	for _, c := range r.CrossCuttingConcerns {
		switch c.ConcernType {
		case "react_hook_call":
			sawHook = true
		case "react_jsx_return":
			sawJSX = true
		case "react_class_component":
			sawClassComponent = true
		}
	}
	if !sawHook || !sawJSX || !sawClassComponent {
		t.Fatalf("expected hook/jsx/class-component concerns, got %+v", r.CrossCuttingConcerns)
	}
}

func TestJSParserPlainJavaScript(t *testing.T) {
	src := "export function add(a, b) {\n  return a + b;\n}\n"
	p := &JSParser{lang: "javascript"}
	r := p.Parse("math.js", []byte(src))
	if _, ok := r.Functions["math.js::add"]; !ok {
		t.Fatalf("expected add function, got %v", keysOf(r.Functions))
	}
	if _, ok := r.Exports["math.js"]["add"]; !ok {
		t.Fatalf("expected add to be exported")
	}
}
